// Package listing extracts the recently updated titles from the site's
// homepage.
//
// The homepage is not parsed as HTML. Records are located by the literal
// markers in the site package, walking a read-only cursor over the page.
package listing

import (
	"strings"

	"github.com/lepinkainen/podio/internal/book"
	podioerrors "github.com/lepinkainen/podio/internal/errors"
	"github.com/lepinkainen/podio/internal/site"
)

// Extractor turns a homepage into partial listing records.
type Extractor struct {
	feedURLTemplate string
}

// NewExtractor creates an Extractor that builds feed URLs from template.
// An empty template selects site.DefaultFeedURLTemplate.
func NewExtractor(template string) *Extractor {
	if template == "" {
		template = site.DefaultFeedURLTemplate
	}
	return &Extractor{feedURLTemplate: template}
}

// Isolate returns the recent updates fragment of page, starting at the
// start marker and ending before the first end marker that follows it.
// When the end marker is missing the fragment runs to the end of page.
func Isolate(page string) (string, bool) {
	start := strings.Index(page, site.RecentUpdatesStart)
	if start < 0 {
		return "", false
	}

	fragment := page[start:]
	if end := strings.Index(fragment, site.RecentUpdatesEnd); end >= 0 {
		fragment = fragment[:end]
	}
	return fragment, true
}

// Extract returns one record per title link in the recent updates
// fragment, in document order. A page without the fragment yields no
// records and no error. Markup that breaks off mid-record fails the whole
// pass with a ListingParseError.
func (e *Extractor) Extract(page string) ([]book.Book, error) {
	fragment, ok := Isolate(page)
	if !ok {
		return []book.Book{}, nil
	}

	c := cursor{buf: fragment}
	books := []book.Book{}

	for c.has(site.TitlePath) {
		b, err := e.next(&c)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, nil
}

func (e *Extractor) next(c *cursor) (book.Book, error) {
	date := site.DatePattern.FindString(c.rest())
	if date == "" {
		return book.Book{}, podioerrors.NewListingParseError("date", c.pos)
	}

	m := site.EpisodePattern.FindStringSubmatch(c.rest())
	if m == nil {
		return book.Book{}, podioerrors.NewListingParseError("episode count", c.pos)
	}
	episodes := m[1]

	fragment, ok := c.between(site.TitlePath, site.TitleHrefEnd)
	if !ok {
		return book.Book{}, podioerrors.NewListingParseError("title link", c.pos)
	}

	title, ok := c.between(site.AnchorTextStart, site.AnchorTextEnd)
	if !ok {
		return book.Book{}, podioerrors.NewListingParseError("title", c.pos)
	}

	display := title + " - " + episodes + " Episodes"
	return book.NewListingBook(display, date, site.FeedURL(e.feedURLTemplate, fragment)), nil
}

// cursor walks forward over an immutable buffer.
type cursor struct {
	buf string
	pos int
}

func (c *cursor) rest() string {
	return c.buf[c.pos:]
}

func (c *cursor) has(marker string) bool {
	return strings.Contains(c.rest(), marker)
}

// between returns the text after the next open marker up to the following
// close marker and moves the cursor onto the close marker. The cursor
// does not move when either marker is missing.
func (c *cursor) between(open, close string) (string, bool) {
	rest := c.rest()

	i := strings.Index(rest, open)
	if i < 0 {
		return "", false
	}
	start := i + len(open)

	j := strings.Index(rest[start:], close)
	if j < 0 {
		return "", false
	}

	c.pos += start + j
	return rest[start : start+j], true
}
