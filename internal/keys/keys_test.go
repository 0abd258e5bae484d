package keys

import (
	"strings"
	"testing"
	"testing/quick"
)

func TestBlog(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{"b1", "blog:b1"},
		{"0f8fad5b-d9cb-469f-a165-70867728950e", "blog:0f8fad5b-d9cb-469f-a165-70867728950e"},
		{"42", "blog:42"},
	}

	for _, tt := range tests {
		if got := Blog(tt.id); got != tt.expected {
			t.Errorf("Blog(%q) = %q, want %q", tt.id, got, tt.expected)
		}
	}
}

func TestBlogSlug(t *testing.T) {
	if got := BlogSlug("my-blog"); got != "blog:my-blog" {
		t.Errorf("expected 'blog:my-blog', got %q", got)
	}
}

func TestPosts(t *testing.T) {
	if got := Posts("b1"); got != "blog:b1:posts" {
		t.Errorf("expected 'blog:b1:posts', got %q", got)
	}
}

func TestSlugGuard(t *testing.T) {
	if got := SlugGuard("my-blog"); got != "slug:my-blog" {
		t.Errorf("expected 'slug:my-blog', got %q", got)
	}
}

func TestBlogID(t *testing.T) {
	tests := []struct {
		name   string
		pk     string
		wantID string
		wantOK bool
	}{
		{"blog key", "blog:b1", "b1", true},
		{"posts key", "blog:b1:posts", "b1", true},
		{"slug guard", "slug:my-blog", "", false},
		{"empty", "", "", false},
		{"tag only", "blog", "", false},
		{"empty id", "blog:", "", false},
		{"empty id with posts", "blog::posts", "", false},
		{"foreign tag", "user:u1", "", false},
		{"unknown suffix", "blog:b1:comments", "", false},
		{"too many segments", "blog:b1:posts:p1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := BlogID(tt.pk)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("BlogID(%q) = (%q, %v), want (%q, %v)", tt.pk, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		pk       string
		expected Kind
	}{
		{"blog:b1", KindBlog},
		{"blog:posts", KindBlog},
		{"blog:b1:posts", KindPosts},
		{"slug:my-blog", KindSlugGuard},
		{"slug:", KindUnknown},
		{"slug:a:b", KindUnknown},
		{"post:p1", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.pk); got != tt.expected {
			t.Errorf("KindOf(%q) = %v, want %v", tt.pk, got, tt.expected)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindBlog.String() != "blog" || KindPosts.String() != "posts" ||
		KindSlugGuard.String() != "slug" || KindUnknown.String() != "unknown" {
		t.Error("unexpected Kind string")
	}
}

// validID maps arbitrary strings to identities the codec accepts.
func validID(s string) string {
	s = strings.ReplaceAll(s, Delimiter, "")
	if s == "" {
		return "x"
	}
	return s
}

func TestBlogRoundTrip_Property(t *testing.T) {
	f := func(raw string) bool {
		id := validID(raw)
		got, ok := BlogID(Blog(id))
		return ok && got == id && KindOf(Blog(id)) == KindBlog
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestPostsRoundTrip_Property(t *testing.T) {
	f := func(raw string) bool {
		id := validID(raw)
		got, ok := BlogID(Posts(id))
		return ok && got == id && KindOf(Posts(id)) == KindPosts
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestInjective_Property(t *testing.T) {
	f := func(rawA, rawB string) bool {
		a, b := validID(rawA), validID(rawB)
		if a == b {
			return Blog(a) == Blog(b)
		}
		return Blog(a) != Blog(b) && Posts(a) != Posts(b) && Blog(a) != Posts(b)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSlugGuardNeverCollidesWithBlogKeys_Property(t *testing.T) {
	f := func(rawSlug, rawID string) bool {
		slug, id := validID(rawSlug), validID(rawID)
		guard := SlugGuard(slug)
		return guard != Blog(id) && guard != Posts(id) && KindOf(guard) == KindSlugGuard
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
