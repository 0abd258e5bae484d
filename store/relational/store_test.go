package relational_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/onetable/store"
	"github.com/jacentio/onetable/store/relational"
)

// newTestStore opens a private in-memory database for one test.
func newTestStore(t *testing.T) *relational.Store {
	t.Helper()
	s, err := relational.Open("sqlite://:memory:", relational.Options{AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := s.DB().DB(); err == nil {
			sqlDB.Close()
		}
	})
	return s
}

func countRows(t *testing.T, s *relational.Store, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Table(table).Count(&n).Error)
	return n
}

func TestCreateBlog(t *testing.T) {
	s := newTestStore(t)

	blog, err := s.CreateBlog(context.Background(), store.CreateBlogInput{Name: "My blog", Slug: "slug-1"})
	require.NoError(t, err)

	_, err = strconv.ParseUint(blog.ID, 10, 64)
	assert.NoError(t, err, "relational ids are numeric serials")
	assert.Equal(t, "My blog", blog.Name)
	assert.Equal(t, "slug-1", blog.Slug)
	assert.Nil(t, blog.Posts)
	assert.EqualValues(t, 1, countRows(t, s, "blogs"))
}

func TestCreateBlog_WithPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, store.CreateBlogInput{
		Name: "My blog",
		Slug: "with-posts",
		Posts: []store.NewPost{
			{Title: "My first post", Content: "Hello world"},
			{Title: "My second post", Content: "Hello world"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, blog.Posts)

	got, err := s.RetrieveBlog(ctx, store.RetrieveBlogInput{ID: blog.ID, IncludePosts: true})
	require.NoError(t, err)
	require.Len(t, got.Posts, 2)

	// Newest identity first.
	assert.Equal(t, "My second post", got.Posts[0].Title)
	assert.Equal(t, "My first post", got.Posts[1].Title)
	for _, p := range got.Posts {
		assert.Equal(t, blog.ID, p.BlogID)
		assert.Equal(t, 0, p.ViewCount)
		assert.Equal(t, "Hello world", p.Content)
	}
}

func TestCreateBlog_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateBlog(ctx, store.CreateBlogInput{Name: "First", Slug: "taken"})
	require.NoError(t, err)

	_, err = s.CreateBlog(ctx, store.CreateBlogInput{
		Name:  "Second",
		Slug:  "taken",
		Posts: []store.NewPost{{Title: "t", Content: "c"}},
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	assert.EqualValues(t, 1, countRows(t, s, "blogs"))
	assert.EqualValues(t, 0, countRows(t, s, "posts"), "posts of a rejected blog must not be written")
}

func TestCreateBlog_TooManyPosts(t *testing.T) {
	s := newTestStore(t)

	posts := make([]store.NewPost, store.MaxInitialPosts+1)
	for i := range posts {
		posts[i] = store.NewPost{Title: "t", Content: "c"}
	}

	_, err := s.CreateBlog(context.Background(), store.CreateBlogInput{Name: "n", Slug: "big", Posts: posts})
	assert.ErrorIs(t, err, store.ErrTooManyPosts)
	assert.EqualValues(t, 0, countRows(t, s, "blogs"))
}

func TestCreatePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, store.CreateBlogInput{Name: "My blog", Slug: "post-target"})
	require.NoError(t, err)

	post, err := s.CreatePost(ctx, store.CreatePostInput{Title: "My first post", Content: "Hello world", BlogID: blog.ID})
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "My first post", post.Title)
	assert.Equal(t, "Hello world", post.Content)
	assert.Equal(t, 0, post.ViewCount)
	assert.Equal(t, blog.ID, post.BlogID)
}

func TestCreatePost_MissingBlog(t *testing.T) {
	tests := []struct {
		name   string
		blogID string
	}{
		{"unknown serial", "9007199254740991"},
		{"non numeric", "0f8fad5b-d9cb-469f-a165-70867728950e"},
		{"zero", "0"},
		{"above int64", "9223372036854775808"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			_, err := s.CreatePost(context.Background(), store.CreatePostInput{Title: "t", Content: "c", BlogID: tt.blogID})
			assert.ErrorIs(t, err, store.ErrNotFound)
			assert.EqualValues(t, 0, countRows(t, s, "posts"))
		})
	}
}

func TestRetrieveBlog_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateBlog(ctx, store.CreateBlogInput{Name: "My blog", Slug: "round-trip"})
	require.NoError(t, err)

	byID, err := s.RetrieveBlog(ctx, store.RetrieveBlogInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	bySlug, err := s.RetrieveBlog(ctx, store.RetrieveBlogInput{Slug: "round-trip"})
	require.NoError(t, err)
	assert.Equal(t, created, bySlug)
}

func TestRetrieveBlog_Absent(t *testing.T) {
	s := newTestStore(t)

	for _, in := range []store.RetrieveBlogInput{
		{ID: "9007199254740991"},
		{ID: "not-a-number"},
		{ID: "9223372036854775808"},
		{ID: "18446744073709551615", IncludePosts: true},
		{Slug: "does-not-exist"},
		{Slug: "does-not-exist", IncludePosts: true},
		{},
	} {
		got, err := s.RetrieveBlog(context.Background(), in)
		assert.NoError(t, err, "input %+v", in)
		assert.Nil(t, got, "input %+v", in)
	}
}

func TestRetrieveBlog_PostsCappedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, store.CreateBlogInput{Name: "Busy", Slug: "busy"})
	require.NoError(t, err)

	const total = store.PostsLimit + 5
	for i := 0; i < total; i++ {
		_, err := s.CreatePost(ctx, store.CreatePostInput{Title: fmt.Sprintf("post %d", i), Content: "c", BlogID: blog.ID})
		require.NoError(t, err)
	}

	got, err := s.RetrieveBlog(ctx, store.RetrieveBlogInput{Slug: "busy", IncludePosts: true})
	require.NoError(t, err)
	require.Len(t, got.Posts, store.PostsLimit)
	assert.Equal(t, fmt.Sprintf("post %d", total-1), got.Posts[0].Title)
	assert.Equal(t, "post 5", got.Posts[store.PostsLimit-1].Title)
}

func TestRetrieveBlog_IncludePostsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blog, err := s.CreateBlog(ctx, store.CreateBlogInput{Name: "Empty", Slug: "empty"})
	require.NoError(t, err)

	got, err := s.RetrieveBlog(ctx, store.RetrieveBlogInput{ID: blog.ID, IncludePosts: true})
	require.NoError(t, err)
	assert.NotNil(t, got.Posts)
	assert.Empty(t, got.Posts)
}
