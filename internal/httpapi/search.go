package httpapi

import (
	"context"
	"net/http"

	"menora/internal"
	"menora/internal/catalog"
	"menora/internal/search"
)

type statusResponse struct {
	catalog.Status
	Report *internal.LoadReport `json:"report,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: s.deps.Catalog.Status()}
	if cat, err := s.deps.Catalog.Catalog(); err == nil {
		report := cat.Report()
		resp.Report = &report
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Search.Statistics()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleRefresh starts a background reload; the load outlives the request.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.StartLoad(context.WithoutCancel(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.deps.Catalog.Status())
}

func (s *Server) handleImagesStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"imagesReady": s.deps.Catalog.ImagesReady(), "withImages": 0}
	if cat, err := s.deps.Catalog.Catalog(); err == nil {
		resp["withImages"] = cat.Stats().WithImages
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.deps.Search.Text(r.Context(), search.Query{
		Text:     q.Get("q"),
		Language: internal.ParseLanguage(q.Get("lang")),
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type searchRequest struct {
	Query    string          `json:"query"`
	Filters  search.Criteria `json:"filters"`
	Language string          `json:"language"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

func (req searchRequest) toQuery() search.Query {
	return search.Query{
		Text:     req.Query,
		Filters:  req.Filters,
		Language: internal.ParseLanguage(req.Language),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
}

func (s *Server) handleSearchFilter(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Search.Filter(r.Context(), req.toQuery())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearchCombined(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Search.Combined(r.Context(), req.toQuery())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	got, err := s.deps.Search.Suggest(r.Context(), q.Get("q"), internal.ParseLanguage(q.Get("lang")), queryInt(r, "limit", 5))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": got})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Search.AvailableFilters(internal.ParseLanguage(r.URL.Query().Get("lang")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"searches": search.PopularSearches(queryInt(r, "limit", 0))})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, ok, err := s.deps.Search.Product(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
