// Package feed maps a parsed per-title feed onto a catalog record.
package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/lepinkainen/podio/internal/book"
	podioerrors "github.com/lepinkainen/podio/internal/errors"
	"github.com/lepinkainen/podio/internal/site"
)

// Extract builds a Book from a title's feed. A feed without the expected
// title suffix, cover image or publication date is rejected with a
// FeedParseError.
func Extract(f *gofeed.Feed) (book.Book, error) {
	if f == nil {
		return book.Book{}, podioerrors.NewFeedParseError("no feed document")
	}

	title, _, found := strings.Cut(f.Title, site.FeedTitleSuffix)
	if !found {
		return book.Book{}, podioerrors.NewFeedParseError("title lacks suffix " + site.FeedTitleSuffix)
	}

	if f.Image == nil || f.Image.URL == "" {
		return book.Book{}, podioerrors.NewFeedParseError("no image")
	}

	published := f.PublishedParsed
	if published == nil {
		published = f.UpdatedParsed
	}
	if published == nil {
		return book.Book{}, podioerrors.NewFeedParseError("no publication date")
	}

	return book.NewFeedBook(book.FeedFields{
		Title:       title,
		Authors:     Authors(f),
		Description: f.Description,
		Categories:  f.Categories,
		Copyright:   f.Copyright,
		URL:         f.Link,
		LastUpdated: published.Format(site.DateLayout),
		ImageURL:    f.Image.URL,
	}), nil
}

// Authors collects the itunes:author values of the channel and then of
// each item, in document order. Exact repeats, blanks and the site's
// placeholder author are dropped.
func Authors(f *gofeed.Feed) []string {
	var authors []string
	seen := make(map[string]bool)

	add := func(exts ext.Extensions) {
		for _, e := range exts[site.AuthorExtension][site.AuthorTag] {
			name := strings.TrimSpace(e.Value)
			if name == "" || seen[name] || strings.EqualFold(name, site.PlaceholderAuthor) {
				continue
			}
			seen[name] = true
			authors = append(authors, name)
		}
	}

	add(f.Extensions)
	for _, item := range f.Items {
		if item != nil {
			add(item.Extensions)
		}
	}

	return authors
}
