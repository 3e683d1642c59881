// Package site holds every literal the scraper relies on from the
// podiobooks.com markup and feeds. When the site changes, this is the
// only file that should need an update.
package site

import (
	"regexp"
	"strings"
)

const (
	// DefaultListingURL is the homepage carrying the recent updates list
	DefaultListingURL = "http://www.podiobooks.com/"

	// TitlePlaceholder is replaced with the title-URL fragment in feed URL templates
	TitlePlaceholder = "__TITLE_PLACEHOLDER__"
	// DefaultFeedURLTemplate builds a per-title feed URL from its fragment
	DefaultFeedURLTemplate = "http://podiobooks.com/title/" + TitlePlaceholder + "/feed/"
)

// Listing page markers
const (
	// RecentUpdatesStart opens the recent updates fragment
	RecentUpdatesStart = "<p>Recent Updates</p>"
	// RecentUpdatesEnd closes the recent updates fragment
	RecentUpdatesEnd = "</ul>"
	// TitlePath precedes the title-URL fragment inside a link
	TitlePath = "/title/"
	// TitleHrefEnd terminates the title-URL fragment
	TitleHrefEnd = "/\""
	// AnchorTextStart precedes the link text
	AnchorTextStart = ">"
	// AnchorTextEnd terminates the link text
	AnchorTextEnd = "</a"
)

// Feed markers
const (
	// FeedTitleSuffix trails every feed title and is cut off
	FeedTitleSuffix = " - A free audiobook by"
	// PlaceholderAuthor shows up on "The End" episodes and is not a real author
	PlaceholderAuthor = "Podiobooks Staff"
	// AuthorExtension is the feed extension namespace carrying authors
	AuthorExtension = "itunes"
	// AuthorTag is the extension element carrying an author name
	AuthorTag = "author"
)

const (
	// DateLayout is the MM/DD/YY form used for lastUpdated
	DateLayout = "01/02/06"
	// EscapedApostrophe is the escaping artifact scrubbed out of titles
	EscapedApostrophe = `\'`
)

var (
	// DatePattern matches MM[-/. ]DD[-/. ]YY with a valid month and day
	DatePattern = regexp.MustCompile(`(0[1-9]|1[012])[- /.](0[1-9]|[12][0-9]|3[01])[- /.]\d\d`)
	// EpisodePattern matches the updated episode count; group 1 holds the digits
	EpisodePattern = regexp.MustCompile(`\s(\d+)\D`)
)

// FeedURL builds the feed URL for a title-URL fragment. Only the first
// placeholder is replaced.
func FeedURL(template, fragment string) string {
	return strings.Replace(template, TitlePlaceholder, fragment, 1)
}
