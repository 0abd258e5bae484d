// Package relational implements store.Store on a SQL database through gorm.
//
// Blogs and posts live in two tables. Slug uniqueness and the post-to-blog
// reference are enforced by the database itself: a unique index on
// blogs.slug and a foreign key on posts.blog_id. Constraint failures are
// translated into store.ErrConflict and store.ErrNotFound, so no pre-check
// reads are needed.
package relational

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jacentio/onetable/store"
)

// Store implements store.Store with gorm.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open gorm connection. Use Open to build one from a URL.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// CreateBlog inserts the blog and its posts in one grouped insert.
func (s *Store) CreateBlog(ctx context.Context, in store.CreateBlogInput) (*store.Blog, error) {
	if len(in.Posts) > store.MaxInitialPosts {
		return nil, fmt.Errorf("%w: got %d, max %d", store.ErrTooManyPosts, len(in.Posts), store.MaxInitialPosts)
	}

	rec := blogRecord{
		Name: in.Name,
		Slug: in.Slug,
	}
	for _, p := range in.Posts {
		rec.Posts = append(rec.Posts, postRecord{Title: p.Title, Content: p.Content})
	}

	// gorm wraps the blog and its associations in one transaction.
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("create blog: %w", err)
	}

	return rec.toBlog(), nil
}

// CreatePost inserts a post referencing an existing blog.
func (s *Store) CreatePost(ctx context.Context, in store.CreatePostInput) (*store.Post, error) {
	blogID, ok := parseID(in.BlogID)
	if !ok {
		return nil, store.ErrNotFound
	}

	rec := postRecord{
		Title:   in.Title,
		Content: in.Content,
		BlogID:  blogID,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	post := rec.toPost()
	return &post, nil
}

// RetrieveBlog looks a blog up by id or slug, optionally with its newest posts.
func (s *Store) RetrieveBlog(ctx context.Context, in store.RetrieveBlogInput) (*store.Blog, error) {
	q := s.db.WithContext(ctx)
	if in.IncludePosts {
		q = q.Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id DESC").Limit(store.PostsLimit)
		})
	}

	var rec blogRecord
	switch {
	case in.ID != "":
		id, ok := parseID(in.ID)
		if !ok {
			return nil, nil
		}
		q = q.Where("id = ?", id)
	case in.Slug != "":
		q = q.Where("slug = ?", in.Slug)
	default:
		return nil, nil
	}

	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("retrieve blog: %w", err)
	}

	blog := rec.toBlog()
	if in.IncludePosts {
		blog.Posts = make([]store.Post, 0, len(rec.Posts))
		for i := range rec.Posts {
			blog.Posts = append(blog.Posts, rec.Posts[i].toPost())
		}
	}
	return blog, nil
}
