// Package keys encodes blogs and posts into the single-table key space.
//
// Item layout:
//
//	| kind       | pk                   | sk             | gsi           |
//	| ========== | ==================== | ============== | ============= |
//	| blog       | blog:<blogId>        | blog:<blogId>  | blog:<slug>   |
//	| post       | blog:<blogId>:posts  | <postId>       |               |
//	| slug guard | slug:<slug>          | slug:<slug>    |               |
//
// All posts of a blog share one partition, so a single query on pk returns them.
// The gsi attribute lets a blog be found by slug without a scan.
package keys

import "strings"

const (
	// Delimiter separates key segments.
	Delimiter = ":"

	blogTag  = "blog"
	postsTag = "posts"
	slugTag  = "slug"
)

// Kind identifies which entity an item's partition key belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindBlog
	KindPosts
	KindSlugGuard
)

func (k Kind) String() string {
	switch k {
	case KindBlog:
		return "blog"
	case KindPosts:
		return "posts"
	case KindSlugGuard:
		return "slug"
	default:
		return "unknown"
	}
}

// Blog returns the partition and sort key of a blog item.
func Blog(blogID string) string {
	return blogTag + Delimiter + blogID
}

// BlogSlug returns the secondary index value of a blog item.
func BlogSlug(slug string) string {
	return blogTag + Delimiter + slug
}

// Posts returns the partition key shared by every post of a blog.
func Posts(blogID string) string {
	return blogTag + Delimiter + blogID + Delimiter + postsTag
}

// SlugGuard returns the partition and sort key of the item reserving a slug.
func SlugGuard(slug string) string {
	return slugTag + Delimiter + slug
}

// BlogID recovers the blog identity from a blog or posts partition key.
// ok is false for keys this package did not produce.
func BlogID(pk string) (id string, ok bool) {
	id, kind := split(pk)
	if kind != KindBlog && kind != KindPosts {
		return "", false
	}
	return id, true
}

// KindOf classifies a partition key.
func KindOf(pk string) Kind {
	_, kind := split(pk)
	return kind
}

func split(pk string) (string, Kind) {
	parts := strings.Split(pk, Delimiter)
	if len(parts) < 2 || parts[1] == "" {
		return "", KindUnknown
	}
	switch {
	case parts[0] == blogTag && len(parts) == 2:
		return parts[1], KindBlog
	case parts[0] == blogTag && len(parts) == 3 && parts[2] == postsTag:
		return parts[1], KindPosts
	case parts[0] == slugTag && len(parts) == 2:
		return parts[1], KindSlugGuard
	}
	return "", KindUnknown
}
