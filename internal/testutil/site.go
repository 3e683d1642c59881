package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lepinkainen/podio/internal/site"
)

// ListingEntry is one row in a generated recent updates list.
type ListingEntry struct {
	Slug     string
	Title    string
	Date     string // MM/DD/YY
	Episodes int
}

// ListingPage renders a homepage whose recent updates fragment holds the
// given entries, in order, surrounded by unrelated markup.
func ListingPage(entries ...ListingEntry) string {
	var b strings.Builder

	b.WriteString("<html><head><title>Podiobooks</title></head><body>\n")
	b.WriteString(`<div class="nav"><a href="/about/">About</a></div>` + "\n")
	b.WriteString(`<div class="recent">` + site.RecentUpdatesStart + "\n<ul>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "<li>%s: %d new episodes of <a href=\"http://podiobooks.com/title/%s/\">%s</a></li>\n",
			e.Date, e.Episodes, e.Slug, e.Title)
	}
	b.WriteString(site.RecentUpdatesEnd + "\n</div>\n")
	b.WriteString(`<ul class="footer"><li><a href="http://podiobooks.com/title/not-recent/">Featured</a></li></ul>` + "\n")
	b.WriteString("</body></html>\n")

	return b.String()
}

// FeedSpec describes a generated per-title feed.
type FeedSpec struct {
	Title       string // without the " - A free audiobook by" suffix
	Author      string // rendered in the suffix
	Link        string
	Description string
	Copyright   string
	ImageURL    string
	PubDate     string // RFC1123Z
	Categories  []string

	// Keywords, ITunesCategories and ITunesImage are podcast directory
	// metadata a title feed may carry besides its own categories and image
	Keywords         string
	ITunesCategories []ITunesCategory
	ITunesImage      string

	// ChannelAuthors are itunes:author values on the channel
	ChannelAuthors []string
	// ItemAuthors are itunes:author values, one per generated episode
	ItemAuthors []string
}

// ITunesCategory is an itunes:category with an optional subcategory.
type ITunesCategory struct {
	Text string
	Sub  string
}

// FeedXML renders spec as an RSS 2.0 document with the iTunes namespace.
func FeedXML(spec FeedSpec) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">` + "\n<channel>\n")
	fmt.Fprintf(&b, "<title>%s%s %s</title>\n", html.EscapeString(spec.Title), site.FeedTitleSuffix, html.EscapeString(spec.Author))
	if spec.Link != "" {
		fmt.Fprintf(&b, "<link>%s</link>\n", spec.Link)
	}
	if spec.Description != "" {
		fmt.Fprintf(&b, "<description>%s</description>\n", html.EscapeString(spec.Description))
	}
	if spec.Copyright != "" {
		fmt.Fprintf(&b, "<copyright>%s</copyright>\n", html.EscapeString(spec.Copyright))
	}
	if spec.PubDate != "" {
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", spec.PubDate)
	}
	if spec.ImageURL != "" {
		fmt.Fprintf(&b, "<image><url>%s</url><title>cover</title><link>%s</link></image>\n", spec.ImageURL, spec.Link)
	}
	for _, c := range spec.Categories {
		fmt.Fprintf(&b, "<category>%s</category>\n", html.EscapeString(c))
	}
	if spec.Keywords != "" {
		fmt.Fprintf(&b, "<itunes:keywords>%s</itunes:keywords>\n", html.EscapeString(spec.Keywords))
	}
	for _, c := range spec.ITunesCategories {
		if c.Sub == "" {
			fmt.Fprintf(&b, "<itunes:category text=\"%s\"/>\n", html.EscapeString(c.Text))
			continue
		}
		fmt.Fprintf(&b, "<itunes:category text=\"%s\"><itunes:category text=\"%s\"/></itunes:category>\n",
			html.EscapeString(c.Text), html.EscapeString(c.Sub))
	}
	if spec.ITunesImage != "" {
		fmt.Fprintf(&b, "<itunes:image href=\"%s\"/>\n", spec.ITunesImage)
	}
	for _, a := range spec.ChannelAuthors {
		fmt.Fprintf(&b, "<itunes:author>%s</itunes:author>\n", html.EscapeString(a))
	}
	for i, a := range spec.ItemAuthors {
		fmt.Fprintf(&b, "<item><title>Episode %d</title><itunes:author>%s</itunes:author></item>\n", i+1, html.EscapeString(a))
	}
	b.WriteString("</channel>\n</rss>\n")

	return b.String()
}

// SiteServer serves a listing page at "/" and feeds at
// "/title/{slug}/feed/". Responses can be replaced while the server runs.
type SiteServer struct {
	*httptest.Server

	mu       sync.Mutex
	listing  string
	feeds    map[string]string
	statuses map[string]int
	hits     map[string]int
}

// NewSiteServer starts a SiteServer that is closed when the test completes.
func NewSiteServer(t *testing.T) *SiteServer {
	t.Helper()

	s := &SiteServer{
		feeds:    make(map[string]string),
		statuses: make(map[string]int),
		hits:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// SetListing sets the homepage body.
func (s *SiteServer) SetListing(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listing = page
}

// SetFeed sets the feed body served for slug.
func (s *SiteServer) SetFeed(slug, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[slug] = body
}

// SetStatus makes path answer with status instead of its body.
func (s *SiteServer) SetStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// Hits returns how many requests path received.
func (s *SiteServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// FeedURLTemplate returns a feed URL template pointing at this server.
func (s *SiteServer) FeedURLTemplate() string {
	return s.URL + site.TitlePath + site.TitlePlaceholder + "/feed/"
}

// FeedPath returns the request path of the feed for slug.
func FeedPath(slug string) string {
	return site.TitlePath + slug + "/feed/"
}

func (s *SiteServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, hasStatus := s.statuses[r.URL.Path]
	listing := s.listing
	var (
		body  string
		found bool
	)
	if r.URL.Path == "/" {
		body, found = listing, true
	} else if slug, ok := strings.CutPrefix(r.URL.Path, site.TitlePath); ok {
		body, found = s.feeds[strings.TrimSuffix(slug, "/feed/")]
	}
	s.mu.Unlock()

	if hasStatus {
		w.WriteHeader(status)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	if r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/rss+xml")
	}
	_, _ = w.Write([]byte(body))
}
