// Package book defines the catalog entities and the only constructors
// allowed to create them. Every constructor returns a fully normalized
// record, so a Book never exists in a "raw" unscrubbed state.
package book

import (
	"slices"
	"strings"

	"github.com/lepinkainen/podio/internal/site"
)

// User-facing messages. Internal error detail is logged, never returned.
const (
	// ListingUnavailableMessage is set on a BookList when the listing could not be loaded.
	ListingUnavailableMessage = "An error occurred while loading the recently updated titles. " +
		"This is likely because of slowness on the site. Please go back and try again. " +
		"If the problem persists please let us know."

	// TitleUnavailableMessage is set on a Book whose feed could not be loaded.
	TitleUnavailableMessage = "An error occurred while loading the requested title. " +
		"This is likely because of slowness on the site. Please go back and try again. " +
		"If the problem persists please let us know."
)

// Book is one catalog entry. It is either complete (Error empty) or
// errored (only Error set).
type Book struct {
	// Title is the display title; listing-derived titles carry an
	// " - N Episodes" suffix.
	Title string `json:"title" yaml:"title"`

	// Authors are distinct author names in first-seen order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Copyright   string   `json:"copyright,omitempty" yaml:"copyright,omitempty"`

	// URL is the canonical title page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// LastUpdated is an MM/DD/YY date taken from the listing page.
	LastUpdated string `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`

	ImageURL string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	FeedURL  string `json:"feedUrl,omitempty" yaml:"feedUrl,omitempty"`

	// Error is a human-readable message set when extraction failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BookList is an ordered catalog. Error is set only when the listing
// itself failed, in which case Books is empty.
type BookList struct {
	Books []Book `json:"books" yaml:"books"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FeedFields carries the feed-sourced values for NewFeedBook.
type FeedFields struct {
	Title       string
	Authors     []string
	Description string
	Categories  []string
	Copyright   string
	URL         string
	LastUpdated string
	ImageURL    string
}

// Scrub replaces the escaped apostrophe artifact with a plain apostrophe
// until none remains, so repeated escaping collapses too and
// Scrub(Scrub(s)) == Scrub(s).
func Scrub(title string) string {
	for strings.Contains(title, site.EscapedApostrophe) {
		title = strings.ReplaceAll(title, site.EscapedApostrophe, "'")
	}
	return title
}

// NewListingBook creates the partial record extracted from the listing page.
func NewListingBook(title, lastUpdated, feedURL string) Book {
	return Book{
		Title:       Scrub(title),
		LastUpdated: lastUpdated,
		FeedURL:     feedURL,
	}
}

// NewFeedBook creates a record from feed-sourced values.
func NewFeedBook(f FeedFields) Book {
	return Book{
		Title:       Scrub(f.Title),
		Authors:     slices.Clone(f.Authors),
		Description: f.Description,
		Categories:  slices.Clone(f.Categories),
		Copyright:   f.Copyright,
		URL:         f.URL,
		LastUpdated: f.LastUpdated,
		ImageURL:    f.ImageURL,
	}
}

// Errored creates a record carrying only an error message.
func Errored(message string) Book {
	return Book{Error: message}
}

// IsErrored reports whether the book represents a failed extraction.
func (b Book) IsErrored() bool {
	return b.Error != ""
}

// Failed reports whether the listing itself failed.
func (l BookList) Failed() bool {
	return l.Error != ""
}

// Complete returns the books without an error.
func (l BookList) Complete() []Book {
	var out []Book
	for _, b := range l.Books {
		if !b.IsErrored() {
			out = append(out, b)
		}
	}
	return out
}

// Errored returns the books that failed extraction.
func (l BookList) Errored() []Book {
	var out []Book
	for _, b := range l.Books {
		if b.IsErrored() {
			out = append(out, b)
		}
	}
	return out
}
