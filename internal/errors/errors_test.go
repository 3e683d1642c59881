package errors

import (
	stdErrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestFetchError(t *testing.T) {
	err := NewFetchError("http://example.com/", 5, 503, nil)

	expected := "fetch http://example.com/ failed after 5 attempt(s) (HTTP 503)"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsFetchError(err) {
		t.Fatalf("IsFetchError returned false for FetchError")
	}

	wrapped := fmt.Errorf("loading listing: %w", err)
	if !IsFetchError(wrapped) {
		t.Fatalf("IsFetchError returned false for wrapped FetchError")
	}
}

func TestFetchError_TransportCause(t *testing.T) {
	err := NewFetchError("http://example.com/", 2, 0, io.ErrUnexpectedEOF)

	expected := "fetch http://example.com/ failed after 2 attempt(s): unexpected EOF"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !stdErrors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("FetchError does not unwrap to its cause")
	}
}

func TestListingParseError(t *testing.T) {
	err := NewListingParseError("date", 42)

	expected := "listing: no date found at offset 42"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsListingParseError(stdErrors.Join(err)) {
		t.Fatalf("IsListingParseError returned false for wrapped ListingParseError")
	}

	if IsFeedParseError(err) {
		t.Fatalf("IsFeedParseError returned true for ListingParseError")
	}
}

func TestFeedParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *FeedParseError
		expected string
	}{
		{
			name:     "missing element",
			err:      NewFeedParseError("no image"),
			expected: "feed: no image",
		},
		{
			name:     "unparseable body",
			err:      WrapFeedParseError("http://example.com/feed/", io.EOF),
			expected: "feed http://example.com/feed/: unparseable document: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Fatalf("Error message = %q, want %q", tt.err.Error(), tt.expected)
			}
			if !IsFeedParseError(fmt.Errorf("resolve: %w", tt.err)) {
				t.Fatalf("IsFeedParseError returned false for wrapped FeedParseError")
			}
		})
	}
}
