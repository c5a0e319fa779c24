package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trendai/apiserver/internal/catalog"
	"github.com/trendai/apiserver/internal/kvstore"
	"github.com/trendai/apiserver/internal/services"
	"github.com/trendai/apiserver/types"
)

func newGalleryRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := kvstore.New(kvstore.NewMemoryBackend(), nil, nil)
	galleryService := services.NewGalleryService(store, nil)

	router := chi.NewRouter()
	router.Route("/gallery", func(r chi.Router) {
		GalleryRouter(r, galleryService, nil, nil)
	})
	return router
}

func saveRequest(trendID string) SaveImageRequest {
	return SaveImageRequest{
		SourceImage:    types.ImagePayload{Data: "c3Jj", MIMEType: "image/png"},
		GeneratedImage: types.ImagePayload{Data: "b3V0", MIMEType: "image/png"},
		TrendID:        trendID,
		Prompt:         "a prompt",
	}
}

func TestSaveAndListGallery(t *testing.T) {
	router := newGalleryRouter(t)

	trends := catalog.List()
	require.NotEmpty(t, trends)

	rec := postJSON(t, router, "/gallery", saveRequest(trends[0].ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved GalleryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)
	require.NotZero(t, saved.Timestamp)
	require.Equal(t, trends[0].Name, saved.TrendName)

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list GalleryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	require.Equal(t, saved.ID, list.Items[0].ID)
	require.Equal(t, "a prompt", list.Items[0].Prompt)
}

func TestSaveGalleryValidation(t *testing.T) {
	router := newGalleryRouter(t)

	rec := postJSON(t, router, "/gallery", SaveImageRequest{TrendID: "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListResolvesUnknownTrendName(t *testing.T) {
	router := newGalleryRouter(t)

	rec := postJSON(t, router, "/gallery", saveRequest("retired-trend"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved GalleryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Equal(t, catalog.UnknownTrendName, saved.TrendName)
}

func TestDeleteGalleryImage(t *testing.T) {
	router := newGalleryRouter(t)

	rec := postJSON(t, router, "/gallery", saveRequest(""))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved GalleryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	req := httptest.NewRequest(http.MethodDelete, "/gallery/"+saved.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Deleting again is a 404.
	req = httptest.NewRequest(http.MethodDelete, "/gallery/"+saved.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArchiveWithoutStorage(t *testing.T) {
	router := newGalleryRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/gallery/some-id/archive", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
