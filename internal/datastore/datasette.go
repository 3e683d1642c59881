package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lepinkainen/podio/internal/book"
)

const (
	defaultDatasetteDatabase = "podio"
	datasetteTable           = "books"
)

// DatasetteStore implements BookStore against a remote Datasette
// instance through its JSON write API.
type DatasetteStore struct {
	baseURL  string
	apiToken string
	database string
	client   *resty.Client
	now      func() time.Time
}

var _ BookStore = (*DatasetteStore)(nil)

// NewDatasetteStore creates a new DatasetteStore instance
func NewDatasetteStore(baseURL, apiToken, database string) *DatasetteStore {
	if database == "" {
		database = defaultDatasetteDatabase
	}
	return &DatasetteStore{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiToken: apiToken,
		database: database,
		now:      time.Now,
	}
}

// Connect validates the base URL and prepares the HTTP client
func (c *DatasetteStore) Connect() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: scheme and host required", c.baseURL)
	}

	c.client = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")
	if c.apiToken != "" {
		c.client.SetAuthToken(c.apiToken)
	}
	return nil
}

// StoreBooks creates the books table on first use and replaces rows by key.
func (c *DatasetteStore) StoreBooks(ctx context.Context, books []book.Book) error {
	toStore := storable(books)
	if len(toStore) == 0 {
		return nil
	}

	storedAt := c.now()
	rows := make([]map[string]any, 0, len(toStore))
	for _, b := range toStore {
		r, err := row(b, storedAt)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	payload := map[string]any{
		"table":   datasetteTable,
		"pk":      "key",
		"rows":    rows,
		"replace": true,
	}

	var errResp datasetteError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(&errResp).
		Post("/" + c.database + "/-/create")
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return errResp.asError(resp)
	}

	slog.Debug("Stored books in Datasette", "count", len(rows), "database", c.database)
	return nil
}

// DeleteBooks removes rows one at a time. Rows that do not exist are ignored.
func (c *DatasetteStore) DeleteBooks(ctx context.Context, books []book.Book) error {
	for _, b := range storable(books) {
		var errResp datasetteError
		resp, err := c.client.R().
			SetContext(ctx).
			SetError(&errResp).
			Post(fmt.Sprintf("/%s/%s/%s/-/delete", c.database, datasetteTable, tildeEncode(Key(b))))
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		if resp.StatusCode() == 404 {
			slog.Debug("Book not present in Datasette", "key", Key(b))
			continue
		}
		if resp.IsError() {
			return errResp.asError(resp)
		}
	}
	return nil
}

// Close is a no-op for the HTTP client
func (c *DatasetteStore) Close() error {
	return nil
}

type datasetteError struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

func (e *datasetteError) asError(resp *resty.Response) error {
	if len(e.Errors) > 0 {
		return fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode(), strings.Join(e.Errors, "; "))
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode())
}

// tildeEncode escapes a primary key for use in a Datasette row path.
func tildeEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_', ch == '-':
			b.WriteByte(ch)
		case ch == ' ':
			b.WriteByte('+')
		default:
			fmt.Fprintf(&b, "~%02X", ch)
		}
	}
	return b.String()
}
