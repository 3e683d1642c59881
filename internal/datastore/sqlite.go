package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lepinkainen/podio/internal/book"
)

const booksSchema = `CREATE TABLE IF NOT EXISTS books (
	key TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	authors TEXT NOT NULL DEFAULT '[]',
	description TEXT,
	categories TEXT NOT NULL DEFAULT '[]',
	copyright TEXT,
	url TEXT,
	last_updated TEXT,
	image_url TEXT,
	feed_url TEXT,
	stored_at TEXT NOT NULL
)`

var bookColumns = []string{
	"key", "title", "authors", "description", "categories", "copyright",
	"url", "last_updated", "image_url", "feed_url", "stored_at",
}

// SQLiteStore implements BookStore on a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

var _ BookStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
		now:    time.Now,
	}
}

// Connect opens the database and creates the books table if needed
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps SQLite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(booksSchema); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create table: %w", err)
	}

	s.db = db
	return nil
}

// StoreBooks inserts or replaces books by key in a single transaction.
// Errored books are skipped.
func (s *SQLiteStore) StoreBooks(ctx context.Context, books []book.Book) error {
	toStore := storable(books)
	if skipped := len(books) - len(toStore); skipped > 0 {
		slog.Debug("Skipping errored books", "count", skipped)
	}
	if len(toStore) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback if we don't commit - ignore errors as they're expected if transaction was committed
		_ = tx.Rollback()
	}()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO books (%s) VALUES (%s)",
		strings.Join(bookColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(bookColumns)), ", "),
	)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	storedAt := s.now()
	for _, b := range toStore {
		record, err := row(b, storedAt)
		if err != nil {
			return err
		}

		values := make([]any, len(bookColumns))
		for i, col := range bookColumns {
			values[i] = record[col]
		}

		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to store %q: %w", b.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("Stored books", "count", len(toStore), "db", s.dbPath)
	return nil
}

// DeleteBooks removes books by key. Unknown books are ignored.
func (s *SQLiteStore) DeleteBooks(ctx context.Context, books []book.Book) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted := int64(0)
	for _, b := range storable(books) {
		res, err := tx.ExecContext(ctx, "DELETE FROM books WHERE key = ?", Key(b))
		if err != nil {
			return fmt.Errorf("failed to delete %q: %w", b.Title, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("Deleted books", "count", deleted, "db", s.dbPath)
	return nil
}

// Count returns the number of stored books
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// Books returns the stored books ordered by title
func (s *SQLiteStore) Books(ctx context.Context) ([]book.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, authors, description, categories, copyright,
		url, last_updated, image_url, feed_url FROM books ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []book.Book
	for rows.Next() {
		var (
			f                      book.FeedFields
			authors, categories    string
			description, copyright sql.NullString
			url, lastUpdated       sql.NullString
			imageURL, feedURL      sql.NullString
		)
		if err := rows.Scan(&f.Title, &authors, &description, &categories, &copyright,
			&url, &lastUpdated, &imageURL, &feedURL); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		if err := json.Unmarshal([]byte(authors), &f.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of %q: %w", f.Title, err)
		}
		if err := json.Unmarshal([]byte(categories), &f.Categories); err != nil {
			return nil, fmt.Errorf("decoding categories of %q: %w", f.Title, err)
		}
		if len(f.Authors) == 0 {
			f.Authors = nil
		}
		if len(f.Categories) == 0 {
			f.Categories = nil
		}
		f.Description = description.String
		f.Copyright = copyright.String
		f.URL = url.String
		f.LastUpdated = lastUpdated.String
		f.ImageURL = imageURL.String

		b := book.NewFeedBook(f)
		b.FeedURL = feedURL.String
		books = append(books, b)
	}

	return books, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
