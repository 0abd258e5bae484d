package api

type newPostRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content" binding:"required,min=1"`
}

type createBlogRequest struct {
	Name  string           `json:"name" binding:"required,min=1,max=255"`
	Slug  string           `json:"slug" binding:"required,slug"`
	Posts []newPostRequest `json:"posts" binding:"omitempty,dive"`
}

type createPostRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content" binding:"required,min=1"`
	BlogID  ID     `json:"blogId" binding:"required"`
}

type retrieveBlogRequest struct {
	ID           *ID     `json:"id"`
	Slug         *string `json:"slug"`
	IncludePosts bool    `json:"includePosts"`
}
