package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"

	"menora/internal/catalog"
	"menora/internal/quote"
	"menora/internal/search"
	"menora/internal/storage"
)

type Deps struct {
	Catalog *catalog.Service
	Search  *search.Service
	Quotes  *quote.Service // optional; list routes are skipped without it

	ImageDir       string
	ImageURLPrefix string
	Logger         *slog.Logger
}

type Server struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.ImageURLPrefix == "" {
		deps.ImageURLPrefix = "/static/images/"
	}
	return &Server{deps: deps, logger: logger}
}

// Handler returns the routed API wrapped with request logging and Server-Timing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/statistics", s.handleStatistics)
	mux.HandleFunc("POST /api/admin/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/images/status", s.handleImagesStatus)

	mux.HandleFunc("GET /api/search/text", s.handleSearchText)
	mux.HandleFunc("POST /api/search/filter", s.handleSearchFilter)
	mux.HandleFunc("POST /api/search/combined", s.handleSearchCombined)
	mux.HandleFunc("GET /api/search/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/search/filters", s.handleFilters)
	mux.HandleFunc("GET /api/search/popular", s.handlePopular)
	mux.HandleFunc("GET /api/products/{id}", s.handleProduct)

	if s.deps.Quotes != nil {
		mux.HandleFunc("GET /api/products/{id}/bulk-pricing", s.handleBulkPricing)
		mux.HandleFunc("POST /api/lists", s.handleCreateList)
		mux.HandleFunc("GET /api/lists", s.handleUserLists)
		mux.HandleFunc("GET /api/lists/{id}", s.handleGetList)
		mux.HandleFunc("DELETE /api/lists/{id}", s.handleDeleteList)
		mux.HandleFunc("POST /api/lists/{id}/items", s.handleAddItem)
		mux.HandleFunc("PATCH /api/lists/{id}/items/{item}", s.handleSetQuantity)
		mux.HandleFunc("GET /api/lists/{id}/totals", s.handleTotals)
		mux.HandleFunc("GET /api/lists/{id}/export.xlsx", s.handleExportXLSX)
		mux.HandleFunc("GET /api/lists/{id}/quote.html", s.handleQuoteHTML)
	}

	if s.deps.ImageDir != "" {
		prefix := "/" + strings.Trim(s.deps.ImageURLPrefix, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.deps.ImageDir))))
	}

	return servertiming.Middleware(s.logRequests(mux), nil)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrLoadInProgress):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, quote.ErrProductNotFound),
		errors.Is(err, quote.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, quote.ErrInvalidQuantity),
		errors.Is(err, quote.ErrNoPricing),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
