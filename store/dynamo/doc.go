// Package dynamo implements store.Store on a single DynamoDB table.
//
// Blogs, posts and slug reservations share one table with a composite primary
// key (pk, sk) and one global secondary index on the gsi attribute. The key
// layout lives in internal/keys:
//
//	blog       pk=blog:<id>        sk=blog:<id>   gsi=blog:<slug>
//	post       pk=blog:<id>:posts  sk=<postId>
//	slug guard pk=slug:<slug>      sk=slug:<slug>
//
// # Writes
//
// CreateBlog first queries the index for the slug and fails with
// store.ErrConflict on a hit. It then writes the slug guard, the blog and every
// initial post in a single TransactWriteItems request. The guard put is
// conditioned on attribute_not_exists(pk), so of two concurrent creations of
// the same slug only one commits.
//
// CreatePost reads the blog item and fails with store.ErrNotFound when it is
// missing, then puts the post into the blog's post partition.
//
// # Reads
//
// Post ids are UUIDv7, so sort keys within a post partition follow creation
// order. RetrieveBlog with IncludePosts queries the partition backwards and
// stops after store.PostsLimit items, which yields the same newest-first
// window as the relational backend.
package dynamo
