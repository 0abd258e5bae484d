package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/onetable/store"
)

// Handler serves the blog procedures on top of a store.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(s store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// CreateBlog handles POST /createBlog.
func (h *Handler) CreateBlog(c *gin.Context) {
	var req createBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := store.CreateBlogInput{
		Name: req.Name,
		Slug: req.Slug,
	}
	for _, p := range req.Posts {
		in.Posts = append(in.Posts, store.NewPost{Title: p.Title, Content: p.Content})
	}

	blog, err := h.store.CreateBlog(c.Request.Context(), in)
	if err != nil {
		h.storeError(c, "createBlog", err)
		return
	}
	respond(c, blog)
}

// CreatePost handles POST /createPost.
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), store.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		BlogID:  string(req.BlogID),
	})
	if err != nil {
		h.storeError(c, "createPost", err)
		return
	}
	respond(c, post)
}

// RetrieveBlog handles GET /retrieveBlog?input=<json>.
func (h *Handler) RetrieveBlog(c *gin.Context) {
	var req retrieveBlogRequest
	if raw := c.Query("input"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.ID == nil && req.Slug == nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, MsgMissingKey)
		return
	}

	in := store.RetrieveBlogInput{IncludePosts: req.IncludePosts}
	if req.ID != nil {
		in.ID = string(*req.ID)
	}
	if req.Slug != nil {
		in.Slug = *req.Slug
	}

	blog, err := h.store.RetrieveBlog(c.Request.Context(), in)
	if err != nil {
		h.storeError(c, "retrieveBlog", err)
		return
	}
	// A nil blog encodes as data: null.
	respond(c, blog)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
