package api

import "github.com/gin-gonic/gin"

// Routes registers the procedures on router.
func Routes(router *gin.Engine, handler *Handler) {
	router.GET("/healthz", handler.Health)

	procedures := router.Group("/")
	{
		procedures.POST("createBlog", handler.CreateBlog)
		procedures.POST("createPost", handler.CreatePost)
		procedures.GET("retrieveBlog", handler.RetrieveBlog)
	}
}
