package store

// Blog is a named collection of posts addressed by a unique slug.
type Blog struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Posts is nil unless the retrieval asked for them.
	Posts []Post `json:"posts,omitempty"`
}

// Post belongs to exactly one blog.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ViewCount int    `json:"viewCount"`
	BlogID    string `json:"blogId"`
}

// NewPost is a post created together with its blog.
type NewPost struct {
	Title   string
	Content string
}

// CreateBlogInput holds the fields of a new blog and its optional initial posts.
type CreateBlogInput struct {
	Name  string
	Slug  string
	Posts []NewPost
}

// CreatePostInput holds the fields of a post added to an existing blog.
type CreatePostInput struct {
	Title   string
	Content string
	BlogID  string
}

// RetrieveBlogInput selects a blog by ID or, when ID is empty, by Slug.
type RetrieveBlogInput struct {
	ID           string
	Slug         string
	IncludePosts bool
}
