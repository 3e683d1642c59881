package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatePattern(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "updated 03/15/24", want: "03/15/24"},
		{input: "updated 03-15-24", want: "03-15-24"},
		{input: "updated 03.15.24", want: "03.15.24"},
		{input: "updated 03 15 24", want: "03 15 24"},
		{input: "updated 12/31/99", want: "12/31/99"},
		{input: "updated 13/01/24", want: ""},
		{input: "updated 00/01/24", want: ""},
		{input: "updated 01/00/24", want: ""},
		{input: "updated 01/32/24", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DatePattern.FindString(tt.input))
		})
	}
}

func TestEpisodePattern(t *testing.T) {
	m := EpisodePattern.FindStringSubmatch("</a> 12 episodes")
	if assert.Len(t, m, 2) {
		assert.Equal(t, "12", m[1])
	}

	assert.Nil(t, EpisodePattern.FindStringSubmatch("no digits here"))
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t,
		"http://podiobooks.com/title/the-rookie/feed/",
		FeedURL(DefaultFeedURLTemplate, "the-rookie"))
	assert.Equal(t, "https://example.com/no-placeholder", FeedURL("https://example.com/no-placeholder", "x"))
	assert.Equal(t,
		"http://example.com/the-rookie/"+TitlePlaceholder+"/feed/",
		FeedURL("http://example.com/"+TitlePlaceholder+"/"+TitlePlaceholder+"/feed/", "the-rookie"))
}
