package errors

import (
	stdErrors "errors"
	"fmt"
)

// ListingParseError reports a listing page whose recent updates fragment
// did not have the expected shape. Offset is the cursor position within
// the isolated fragment when the match failed.
type ListingParseError struct {
	Field  string
	Offset int
}

func (e *ListingParseError) Error() string {
	return fmt.Sprintf("listing: no %s found at offset %d", e.Field, e.Offset)
}

// NewListingParseError creates a new ListingParseError
func NewListingParseError(field string, offset int) *ListingParseError {
	return &ListingParseError{Field: field, Offset: offset}
}

// IsListingParseError reports whether err is a ListingParseError (even when wrapped).
func IsListingParseError(err error) bool {
	var parseErr *ListingParseError
	return stdErrors.As(err, &parseErr)
}

// FeedParseError reports a feed that could not be parsed or lacks a
// required element.
type FeedParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FeedParseError) Error() string {
	msg := "feed: " + e.Reason
	if e.URL != "" {
		msg = fmt.Sprintf("feed %s: %s", e.URL, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FeedParseError) Unwrap() error {
	return e.Err
}

// NewFeedParseError creates a FeedParseError for a missing or malformed element
func NewFeedParseError(reason string) *FeedParseError {
	return &FeedParseError{Reason: reason}
}

// WrapFeedParseError creates a FeedParseError for a body that failed to parse
func WrapFeedParseError(url string, err error) *FeedParseError {
	return &FeedParseError{URL: url, Reason: "unparseable document", Err: err}
}

// IsFeedParseError reports whether err is a FeedParseError (even when wrapped).
func IsFeedParseError(err error) bool {
	var parseErr *FeedParseError
	return stdErrors.As(err, &parseErr)
}
