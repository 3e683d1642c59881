package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/podio/internal/book"
)

type fakeService struct {
	list    book.BookList
	stored  []book.BookList
	deleted []book.BookList
	err     error
}

func (f *fakeService) GetCatalog(context.Context) book.BookList { return f.list }

func (f *fakeService) StoreBooks(_ context.Context, list book.BookList) error {
	f.stored = append(f.stored, list)
	return f.err
}

func (f *fakeService) DeleteBooks(_ context.Context, list book.BookList) error {
	f.deleted = append(f.deleted, list)
	return f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, New(&fakeService{}), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetBooks(t *testing.T) {
	svc := &fakeService{list: book.BookList{Books: []book.Book{
		book.NewListingBook("Foo - 3 Episodes", "05/01/24", "http://podiobooks.com/title/foo/feed/"),
	}}}

	for _, path := range []string{"/books", "/resources/books"} {
		rec := do(t, New(svc), http.MethodGet, path, "")

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got book.BookList
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, svc.list, got)
	}
}

func TestGetBooks_ListingFailureIsStillOK(t *testing.T) {
	svc := &fakeService{list: book.BookList{Books: []book.Book{}, Error: book.ListingUnavailableMessage}}

	rec := do(t, New(svc), http.MethodGet, "/books", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"books":[],"error":"`+book.ListingUnavailableMessage+`"}`, rec.Body.String())
}

func TestStoreBooks(t *testing.T) {
	body := `{"books":[{"title":"Foo - 3 Episodes","feedUrl":"http://x/feed/"}]}`

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		svc := &fakeService{}
		rec := do(t, New(svc), method, "/books", body)

		assert.Equal(t, http.StatusNoContent, rec.Code, method)
		require.Len(t, svc.stored, 1)
		assert.Equal(t, "Foo - 3 Episodes", svc.stored[0].Books[0].Title)
	}
}

func TestDeleteBooks(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, New(svc), http.MethodDelete, "/books", `{"books":[{"title":"Foo"}]}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, svc.deleted, 1)
	assert.Equal(t, "Foo", svc.deleted[0].Books[0].Title)
}

func TestInvalidBody(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, New(svc), http.MethodPut, "/books", `{"books": [`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
	assert.Empty(t, svc.stored)
}

func TestStoreFailure(t *testing.T) {
	svc := &fakeService{err: errors.New("database is locked")}

	rec := do(t, New(svc), http.MethodPost, "/books", `{"books":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "locked", "internal detail is not returned")

	rec = do(t, New(svc), http.MethodDelete, "/books", `{"books":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, New(&fakeService{}), http.MethodPatch, "/books", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
