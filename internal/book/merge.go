package book

// Merge combines a listing record with the record extracted from its feed.
// The feed supplies every field except Title and LastUpdated, which come
// from the listing. FeedURL is set to the URL the feed was fetched from.
//
// The result is rebuilt through NewFeedBook so it carries the same
// normalization as any other constructed record.
func Merge(listing, fromFeed Book, feedURL string) Book {
	merged := NewFeedBook(FeedFields{
		Title:       listing.Title,
		Authors:     fromFeed.Authors,
		Description: fromFeed.Description,
		Categories:  fromFeed.Categories,
		Copyright:   fromFeed.Copyright,
		URL:         fromFeed.URL,
		LastUpdated: listing.LastUpdated,
		ImageURL:    fromFeed.ImageURL,
	})
	merged.FeedURL = feedURL
	return merged
}
