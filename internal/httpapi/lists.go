package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

type createListRequest struct {
	UserCode string `json:"user_code"`
	Name     string `json:"name"`
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserCode) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user_code is required"})
		return
	}
	l, err := s.deps.Quotes.Create(r.Context(), req.UserCode, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUserLists(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user is required"})
		return
	}
	lists, err := s.deps.Quotes.ListsByUser(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	l, err := s.deps.Quotes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Quotes.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	MenoraID string `json:"menora_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	l, it, err := s.deps.Quotes.AddItem(r.Context(), r.PathValue("id"), req.MenoraID, req.Quantity, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": l, "item": it})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.deps.Quotes.SetQuantity(r.Context(), r.PathValue("id"), r.PathValue("item"), req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	includeTax := r.URL.Query().Get("tax") != "false"
	totals, err := s.deps.Quotes.Totals(r.Context(), r.PathValue("id"), includeTax)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	calc := s.deps.Quotes.Calculator()
	writeJSON(w, http.StatusOK, map[string]any{
		"totals":    totals,
		"formatted": calc.Format(totals.Total, totals.Currency),
	})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	path, err := s.deps.Quotes.ExportXLSX(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleQuoteHTML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.deps.Quotes.RenderHTML(r.Context(), r.PathValue("id"), &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleBulkPricing(w http.ResponseWriter, r *http.Request) {
	var qtys []int
	for _, part := range strings.Split(r.URL.Query().Get("quantities"), ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n > 0 {
			qtys = append(qtys, n)
		}
	}
	rows, err := s.deps.Quotes.BulkTable(r.PathValue("id"), qtys)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menora_id": r.PathValue("id"), "pricing": rows})
}
