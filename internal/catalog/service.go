// Package catalog assembles the audiobook catalog from the listing page and
// the per-title feeds.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/podio/internal/book"
	"github.com/lepinkainen/podio/internal/cache"
	"github.com/lepinkainen/podio/internal/datastore"
	"github.com/lepinkainen/podio/internal/feed"
	"github.com/lepinkainen/podio/internal/listing"
	"github.com/lepinkainen/podio/internal/ratelimit"
	"github.com/lepinkainen/podio/internal/site"
)

// DocumentFetcher retrieves the documents the catalog is built from.
type DocumentFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	FetchFeed(ctx context.Context, url string) (*gofeed.Feed, error)
}

// Options configures a Service. Zero values select the site defaults,
// sequential feed resolution, no pacing, no feed cache and the logging store.
type Options struct {
	ListingURL      string
	FeedURLTemplate string
	Concurrency     int
	Limiter         *ratelimit.Limiter
	Cache           *cache.DB
	Store           datastore.BookStore
}

// Service builds catalogs and hands books to the configured store.
type Service struct {
	fetcher     DocumentFetcher
	extractor   *listing.Extractor
	listingURL  string
	concurrency int
	limiter     *ratelimit.Limiter
	cache       *cache.DB
	store       datastore.BookStore
}

// NewService creates a new catalog Service.
func NewService(fetcher DocumentFetcher, opts Options) *Service {
	if opts.ListingURL == "" {
		opts.ListingURL = site.DefaultListingURL
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Store == nil {
		opts.Store = datastore.NewLogStore()
	}

	return &Service{
		fetcher:     fetcher,
		extractor:   listing.NewExtractor(opts.FeedURLTemplate),
		listingURL:  opts.ListingURL,
		concurrency: opts.Concurrency,
		limiter:     opts.Limiter,
		cache:       opts.Cache,
		store:       opts.Store,
	}
}

// GetCatalog fetches the listing and resolves every title on it. It never
// returns an error: a listing failure yields an empty list with Error set,
// and a title failure yields an errored Book in that title's position.
func (s *Service) GetCatalog(ctx context.Context) book.BookList {
	start := time.Now()

	listed, err := s.listing(ctx)
	if err != nil {
		slog.Error("Failed to load listing", "url", s.listingURL, "error", err)
		return book.BookList{Books: []book.Book{}, Error: book.ListingUnavailableMessage}
	}
	if len(listed) == 0 {
		slog.Warn("Listing contained no recent updates", "url", s.listingURL)
	}

	books := make([]book.Book, len(listed))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, entry := range listed {
		g.Go(func() error {
			books[i] = s.resolveBook(ctx, entry)
			return nil
		})
	}
	// Workers never fail; errors are recorded per title.
	_ = g.Wait()

	list := book.BookList{Books: books}
	slog.Info("Catalog assembled",
		"titles", len(books),
		"complete", len(list.Complete()),
		"errored", len(list.Errored()),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return list
}

func (s *Service) listing(ctx context.Context) ([]book.Book, error) {
	page, err := s.fetcher.FetchText(ctx, s.listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}

	listed, err := s.extractor.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("extracting listing: %w", err)
	}

	slog.Debug("Extracted listing", "url", s.listingURL, "titles", len(listed))
	return listed, nil
}

// resolveBook fetches and extracts one title's feed and merges it with
// the listing record. Any failure becomes an errored Book.
func (s *Service) resolveBook(ctx context.Context, entry book.Book) book.Book {
	feedURL := entry.FeedURL

	fromFeed, err := s.fetchFeedBook(ctx, feedURL)
	if err != nil {
		slog.Error("Failed to load title", "title", entry.Title, "url", feedURL, "error", err)
		return book.Errored(book.TitleUnavailableMessage)
	}

	slog.Debug("Resolved title", "title", entry.Title, "url", feedURL)
	return book.Merge(entry, fromFeed, feedURL)
}

func (s *Service) fetchFeedBook(ctx context.Context, feedURL string) (book.Book, error) {
	fromFeed, _, err := cache.GetOrFetch(s.cache, feedURL, func() (book.Book, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return book.Book{}, err
		}

		parsed, err := s.fetcher.FetchFeed(ctx, feedURL)
		if err != nil {
			return book.Book{}, err
		}

		extracted, err := feed.Extract(parsed)
		if err != nil {
			return book.Book{}, fmt.Errorf("extracting feed: %w", err)
		}
		return extracted, nil
	})
	return fromFeed, err
}

// StoreBooks hands the books of list to the configured store.
func (s *Service) StoreBooks(ctx context.Context, list book.BookList) error {
	if err := s.store.StoreBooks(ctx, list.Books); err != nil {
		return fmt.Errorf("storing books: %w", err)
	}
	return nil
}

// DeleteBooks removes the books of list from the configured store.
func (s *Service) DeleteBooks(ctx context.Context, list book.BookList) error {
	if err := s.store.DeleteBooks(ctx, list.Books); err != nil {
		return fmt.Errorf("deleting books: %w", err)
	}
	return nil
}
