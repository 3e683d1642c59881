// Package datastore persists catalog records.
package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lepinkainen/podio/internal/book"
)

// Store kinds accepted by Open
const (
	KindLog       = "log"
	KindSQLite    = "sqlite"
	KindDatasette = "datasette"
)

// BookStore defines the interface for catalog persistence
type BookStore interface {
	// Connect establishes a connection to the data store
	Connect() error

	// StoreBooks inserts or replaces the given books
	StoreBooks(ctx context.Context, books []book.Book) error

	// DeleteBooks removes the given books
	DeleteBooks(ctx context.Context, books []book.Book) error

	// Close closes the connection to the data store
	Close() error
}

// Options selects and configures a BookStore.
type Options struct {
	Kind   string
	DBPath string

	DatasetteURL      string
	DatasetteToken    string
	DatasetteDatabase string
}

// Open creates the store selected by opts.Kind and connects it.
func Open(opts Options) (BookStore, error) {
	var store BookStore

	switch opts.Kind {
	case "", KindLog:
		store = NewLogStore()
	case KindSQLite:
		store = NewSQLiteStore(opts.DBPath)
	case KindDatasette:
		store = NewDatasetteStore(opts.DatasetteURL, opts.DatasetteToken, opts.DatasetteDatabase)
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Kind)
	}

	if err := store.Connect(); err != nil {
		return nil, fmt.Errorf("connecting %s store: %w", opts.Kind, err)
	}
	return store, nil
}

// Key identifies a book in persistent storage: its feed URL, or the title
// for records that never had one.
func Key(b book.Book) string {
	if b.FeedURL != "" {
		return b.FeedURL
	}
	return b.Title
}

// storable drops errored books, which carry nothing worth persisting.
func storable(books []book.Book) []book.Book {
	out := make([]book.Book, 0, len(books))
	for _, b := range books {
		if b.IsErrored() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// row flattens a book into column values. List fields are JSON arrays.
func row(b book.Book, storedAt time.Time) (map[string]any, error) {
	authors, err := json.Marshal(nonNil(b.Authors))
	if err != nil {
		return nil, fmt.Errorf("encoding authors: %w", err)
	}
	categories, err := json.Marshal(nonNil(b.Categories))
	if err != nil {
		return nil, fmt.Errorf("encoding categories: %w", err)
	}

	return map[string]any{
		"key":          Key(b),
		"title":        b.Title,
		"authors":      string(authors),
		"description":  b.Description,
		"categories":   string(categories),
		"copyright":    b.Copyright,
		"url":          b.URL,
		"last_updated": b.LastUpdated,
		"image_url":    b.ImageURL,
		"feed_url":     b.FeedURL,
		"stored_at":    storedAt.UTC().Format(time.RFC3339),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
