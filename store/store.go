package store

import (
	"context"
	"regexp"
)

const (
	// MaxNameLength bounds blog names, post titles and slugs.
	MaxNameLength = 255

	// MaxInitialPosts is the largest number of posts CreateBlog accepts. The
	// single-table backend writes the blog, its slug guard and every post in one
	// DynamoDB transaction, which is capped at 100 items.
	MaxInitialPosts = 98

	// PostsLimit caps the posts returned by RetrieveBlog with IncludePosts.
	PostsLimit = 100
)

// Store is the backend-agnostic storage contract.
type Store interface {
	// CreateBlog creates a blog and its initial posts as one atomic write.
	// Returns ErrConflict if the slug is taken. The returned blog has no posts.
	CreateBlog(ctx context.Context, in CreateBlogInput) (*Blog, error)

	// CreatePost adds a post to an existing blog.
	// Returns ErrNotFound if the blog does not exist.
	CreatePost(ctx context.Context, in CreatePostInput) (*Post, error)

	// RetrieveBlog looks a blog up by ID, or by Slug when ID is empty.
	// It returns (nil, nil) when nothing matches. With IncludePosts, up to
	// PostsLimit posts are attached, newest first.
	RetrieveBlog(ctx context.Context, in RetrieveBlogInput) (*Blog, error)
}

var slugPattern = regexp.MustCompile(`^[\w-]+$`)

// ValidSlug reports whether s is a non-empty run of word characters and hyphens
// no longer than MaxNameLength.
func ValidSlug(s string) bool {
	return len(s) <= MaxNameLength && slugPattern.MatchString(s)
}
