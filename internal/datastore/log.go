package datastore

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/podio/internal/book"
)

// LogStore accepts books and only logs them. It is the default store.
type LogStore struct{}

var _ BookStore = (*LogStore)(nil)

// NewLogStore creates a new LogStore
func NewLogStore() *LogStore {
	return &LogStore{}
}

// Connect is a no-op
func (s *LogStore) Connect() error {
	return nil
}

func (s *LogStore) StoreBooks(ctx context.Context, books []book.Book) error {
	for _, b := range books {
		slog.Info("Storing a book (not persisted)", "title", b.Title, "feed_url", b.FeedURL)
	}
	return ctx.Err()
}

func (s *LogStore) DeleteBooks(ctx context.Context, books []book.Book) error {
	for _, b := range books {
		slog.Info("Deleting a book (not persisted)", "title", b.Title, "feed_url", b.FeedURL)
	}
	return ctx.Err()
}

// Close is a no-op
func (s *LogStore) Close() error {
	return nil
}
