package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trendai/apiserver/internal/catalog"
	"github.com/trendai/apiserver/types"
)

// TrendHandler serves the static trend catalog.
type TrendHandler struct{}

// TrendRouter registers trend routes on the given router.
func TrendRouter(r chi.Router) {
	handler := &TrendHandler{}

	r.Get("/", handler.ListTrends)
	r.Get("/{trendID}", handler.GetTrend)
}

// ListTrends returns the catalog, optionally filtered by category.
func (h *TrendHandler) ListTrends(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var items []types.Trend
	if category == "" {
		items = catalog.List()
	} else {
		items = catalog.ListByCategory(types.TrendCategory(category))
	}
	if items == nil {
		items = []types.Trend{}
	}

	writeJSON(w, http.StatusOK, TrendListResponse{Items: items})
}

// GetTrend returns one catalog entry by id.
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trendID")

	trend, ok := catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "trend not found")
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

type TrendListResponse struct {
	Items []types.Trend `json:"items"`
}
