// Package api exposes the catalog over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lepinkainen/podio/internal/book"
)

// maxBodyBytes bounds decoded request bodies
const maxBodyBytes = 4 << 20

// CatalogService is the part of catalog.Service the HTTP layer needs.
type CatalogService interface {
	GetCatalog(ctx context.Context) book.BookList
	StoreBooks(ctx context.Context, list book.BookList) error
	DeleteBooks(ctx context.Context, list book.BookList) error
}

// Server handles HTTP requests for the catalog.
type Server struct {
	svc CatalogService
	mux *http.ServeMux
}

var _ http.Handler = (*Server)(nil)

// New creates a Server backed by svc.
func New(svc CatalogService) *Server {
	srv := &Server{svc: svc, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	// Existing clients request /resources/books.
	for _, prefix := range []string{"", "/resources"} {
		s.mux.HandleFunc("GET "+prefix+"/books", s.handleGetBooks)
		s.mux.HandleFunc("POST "+prefix+"/books", s.handleStoreBooks)
		s.mux.HandleFunc("PUT "+prefix+"/books", s.handleStoreBooks)
		s.mux.HandleFunc("DELETE "+prefix+"/books", s.handleDeleteBooks)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetBooks always answers 200; a failed listing is reported in the
// body's error field.
func (s *Server) handleGetBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.GetCatalog(r.Context()))
}

func (s *Server) handleStoreBooks(w http.ResponseWriter, r *http.Request) {
	list, ok := decodeBookList(w, r)
	if !ok {
		return
	}

	if err := s.svc.StoreBooks(r.Context(), list); err != nil {
		slog.Error("Failed to store books", "count", len(list.Books), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store books")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBooks(w http.ResponseWriter, r *http.Request) {
	list, ok := decodeBookList(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteBooks(r.Context(), list); err != nil {
		slog.Error("Failed to delete books", "count", len(list.Books), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete books")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBookList(w http.ResponseWriter, r *http.Request) (book.BookList, bool) {
	var list book.BookList
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&list); err != nil {
		slog.Debug("Rejected request body", "method", r.Method, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return book.BookList{}, false
	}
	return list, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
