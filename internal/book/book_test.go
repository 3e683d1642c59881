package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrub(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no artifact", input: "The Rookie", want: "The Rookie"},
		{name: "single", input: `Ender\'s Game`, want: "Ender's Game"},
		{name: "multiple", input: `It\'s Nobody\'s Fault`, want: "It's Nobody's Fault"},
		{name: "double escaped", input: `Pirate\\'s Cove`, want: "Pirate's Cove"},
		{name: "lone backslash kept", input: `a\b`, want: `a\b`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scrub(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Scrub(got), "scrub must be idempotent")
		})
	}
}

func TestMergeKeepsScrubbedListingTitle(t *testing.T) {
	listed := NewListingBook(`Pirate\\'s Cove - 2 Episodes`, "03/15/24", "http://podiobooks.com/title/pirates-cove/feed/")
	merged := Merge(listed, NewFeedBook(FeedFields{Title: "Pirate's Cove"}), listed.FeedURL)

	assert.Equal(t, listed.Title, merged.Title)
	assert.Equal(t, "Pirate's Cove - 2 Episodes", merged.Title)
}

func TestNewListingBook(t *testing.T) {
	b := NewListingBook(`Ender\'s Game - 3 Episodes`, "03/15/24", "http://podiobooks.com/title/enders-game/feed/")

	assert.Equal(t, "Ender's Game - 3 Episodes", b.Title)
	assert.Equal(t, "03/15/24", b.LastUpdated)
	assert.Equal(t, "http://podiobooks.com/title/enders-game/feed/", b.FeedURL)
	assert.False(t, b.IsErrored())
}

func TestNewFeedBookCopiesSlices(t *testing.T) {
	authors := []string{"Scott Sigler"}
	categories := []string{"Horror"}

	b := NewFeedBook(FeedFields{
		Title:      `Ancestor\'s Tale`,
		Authors:    authors,
		Categories: categories,
	})
	authors[0] = "changed"
	categories[0] = "changed"

	assert.Equal(t, "Ancestor's Tale", b.Title)
	assert.Equal(t, []string{"Scott Sigler"}, b.Authors)
	assert.Equal(t, []string{"Horror"}, b.Categories)
}

func TestErrored(t *testing.T) {
	b := Errored(TitleUnavailableMessage)

	assert.True(t, b.IsErrored())
	assert.Empty(t, b.Title)
	assert.Empty(t, b.Authors)
	assert.Empty(t, b.FeedURL)
}

func TestMerge(t *testing.T) {
	listing := NewListingBook("The Rookie - 12 Episodes", "03/15/24", "ignored")
	fromFeed := NewFeedBook(FeedFields{
		Title:       "The Rookie",
		Authors:     []string{"Scott Sigler"},
		Description: "Football in space.",
		Categories:  []string{"Science Fiction", "Sports"},
		Copyright:   "CC BY-NC-ND",
		URL:         "http://podiobooks.com/title/the-rookie/",
		LastUpdated: "01/02/09",
		ImageURL:    "http://podiobooks.com/images/the-rookie.jpg",
	})

	got := Merge(listing, fromFeed, "http://podiobooks.com/title/the-rookie/feed/")

	require.False(t, got.IsErrored())
	assert.Equal(t, "The Rookie - 12 Episodes", got.Title)
	assert.Equal(t, "03/15/24", got.LastUpdated)
	assert.Equal(t, "http://podiobooks.com/title/the-rookie/feed/", got.FeedURL)
	assert.Equal(t, []string{"Scott Sigler"}, got.Authors)
	assert.Equal(t, "Football in space.", got.Description)
	assert.Equal(t, []string{"Science Fiction", "Sports"}, got.Categories)
	assert.Equal(t, "CC BY-NC-ND", got.Copyright)
	assert.Equal(t, "http://podiobooks.com/title/the-rookie/", got.URL)
	assert.Equal(t, "http://podiobooks.com/images/the-rookie.jpg", got.ImageURL)
}

func TestBookListPartitions(t *testing.T) {
	list := BookList{Books: []Book{
		NewListingBook("A", "01/01/24", "a"),
		Errored(TitleUnavailableMessage),
		NewListingBook("B", "01/02/24", "b"),
	}}

	assert.False(t, list.Failed())
	assert.Len(t, list.Complete(), 2)
	assert.Len(t, list.Errored(), 1)

	failed := BookList{Books: []Book{}, Error: ListingUnavailableMessage}
	assert.True(t, failed.Failed())
	assert.Empty(t, failed.Complete())
}
