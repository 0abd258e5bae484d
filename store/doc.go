// Package store defines the storage contract for blogs and their posts.
//
// Two backends implement [Store]:
//
//   - store/dynamo keeps every entity in one DynamoDB table using a
//     single-table layout (composite pk/sk plus one global secondary index).
//   - store/relational maps blogs and posts onto two SQL tables through gorm.
//
// Exactly one backend is chosen at startup (see package backend). Callers only
// ever see the types in this package, so identities are always strings even
// though the relational backend stores numeric serials.
//
// # Errors
//
// Both backends report the same failures:
//
//   - [ErrConflict] - a blog with the requested slug already exists
//   - [ErrNotFound] - a post references a blog that does not exist
//   - [ErrTooManyPosts] - CreateBlog was given more than [MaxInitialPosts] posts
//
// A retrieval that matches nothing is not an error: RetrieveBlog returns a nil
// *Blog and a nil error.
package store
