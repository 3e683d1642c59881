package feed

import (
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// NewParser returns a gofeed parser that maps RSS channels with
// Translator. Parsers keep per-parse state; use one per document.
func NewParser() *gofeed.Parser {
	p := gofeed.NewParser()
	p.RSSTranslator = &Translator{}
	return p
}

// Translator is gofeed's default RSS mapping narrowed to what a title
// feed declares itself: categories are the channel <category> elements
// only, and the image is the channel <image> only. The default also folds
// in itunes keywords, itunes categories and itunes or embedded images.
type Translator struct {
	gofeed.DefaultRSSTranslator
}

var _ gofeed.Translator = (*Translator)(nil)

// Translate converts an *rss.Feed into the universal feed type.
func (t *Translator) Translate(feed any) (*gofeed.Feed, error) {
	channel, ok := feed.(*rss.Feed)
	if !ok {
		return nil, fmt.Errorf("feed did not match expected type of *rss.Feed")
	}

	result, err := t.DefaultRSSTranslator.Translate(channel)
	if err != nil {
		return nil, err
	}

	result.Categories = nil
	for _, c := range channel.Categories {
		if c != nil {
			result.Categories = append(result.Categories, c.Value)
		}
	}

	result.Image = nil
	if channel.Image != nil {
		result.Image = &gofeed.Image{Title: channel.Image.Title, URL: channel.Image.URL}
	}

	return result, nil
}
