package store

import "errors"

var (
	// ErrConflict is returned when a blog is created with a slug that is already in use.
	ErrConflict = errors.New("onetable: slug already in use")

	// ErrNotFound is returned when a post is created for a blog that does not exist.
	ErrNotFound = errors.New("onetable: blog not found")

	// ErrTooManyPosts is returned when CreateBlog receives more initial posts than
	// a single grouped write can hold.
	ErrTooManyPosts = errors.New("onetable: too many initial posts")
)
