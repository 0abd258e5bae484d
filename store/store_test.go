package store_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jacentio/onetable/store"
)

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		expected bool
	}{
		{"empty", "", false},
		{"bang", "!", false},
		{"trailing bang", "hello!", false},
		{"space", " ", false},
		{"newline", "\n", false},
		{"inner space", "hello world", false},
		{"inner space capitalised", "Hello World", false},
		{"leading space", " hello world", false},
		{"leading space capitalised", " Hello World", false},
		{"trailing space", "hello world ", false},
		{"trailing space capitalised", "Hello World ", false},
		{"colon", "blog:1", false},
		{"hyphenated", "hello-world", true},
		{"hyphenated capitalised", "Hello-World", true},
		{"underscore and digits", "my_blog_2", true},
		{"max length", strings.Repeat("a", store.MaxNameLength), true},
		{"over max length", strings.Repeat("a", store.MaxNameLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.ValidSlug(tt.slug); got != tt.expected {
				t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, got, tt.expected)
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	errs := []error{store.ErrConflict, store.ErrNotFound, store.ErrTooManyPosts}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("expected %v and %v to be distinct", a, b)
			}
		}
	}
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create blog: %w", store.ErrConflict)
	if !errors.Is(wrapped, store.ErrConflict) {
		t.Error("expected wrapped error to match ErrConflict")
	}
	if errors.Is(wrapped, store.ErrNotFound) {
		t.Error("expected wrapped conflict not to match ErrNotFound")
	}
}

func TestMaxInitialPostsFitsTransaction(t *testing.T) {
	// blog item + slug guard + posts must fit DynamoDB's 100-item transaction.
	if store.MaxInitialPosts+2 > 100 {
		t.Errorf("MaxInitialPosts %d overflows a 100-item transaction", store.MaxInitialPosts)
	}
}
