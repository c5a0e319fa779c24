package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trendai/apiserver/internal/catalog"
	"github.com/trendai/apiserver/internal/kvstore"
	"github.com/trendai/apiserver/internal/services"
	"github.com/trendai/apiserver/internal/storage"
	"github.com/trendai/apiserver/types"
)

// GalleryHandler serves the persisted gallery. The archive is optional;
// archive requests fail with 503 when no object storage is configured.
type GalleryHandler struct {
	galleryService *services.GalleryService
	archive        *storage.Archive
}

// NewGalleryHandler constructs a handler with the provided dependencies.
func NewGalleryHandler(galleryService *services.GalleryService, archive *storage.Archive) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		archive:        archive,
	}
}

// GalleryRouter registers gallery routes on the given router.
func GalleryRouter(r chi.Router, galleryService *services.GalleryService, archive *storage.Archive, authMiddleware func(http.Handler) http.Handler) {
	handler := NewGalleryHandler(galleryService, archive)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}
	r.Get("/", handler.ListImages)
	r.Post("/", handler.SaveImage)
	r.Route("/{imageID}", func(r chi.Router) {
		r.Delete("/", handler.DeleteImage)
		r.Post("/archive", handler.ArchiveImage)
	})
}

// ListImages returns the saved records, newest first.
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images := h.galleryService.List(r.Context())

	items := make([]GalleryItem, 0, len(images))
	for _, img := range images {
		items = append(items, GalleryItem{
			GeneratedImage: img,
			TrendName:      catalog.TrendName(img.TrendID),
		})
	}
	writeJSON(w, http.StatusOK, GalleryListResponse{Items: items})
}

// SaveImage appends a new record to the gallery.
func (h *GalleryHandler) SaveImage(w http.ResponseWriter, r *http.Request) {
	var req SaveImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.SourceImage.Data == "" || req.GeneratedImage.Data == "" {
		writeError(w, http.StatusBadRequest, "source and generated images are required")
		return
	}

	saved, err := h.galleryService.Save(r.Context(), types.GeneratedImage{
		SourceImage:    req.SourceImage,
		GeneratedImage: req.GeneratedImage,
		TrendID:        req.TrendID,
		Prompt:         req.Prompt,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	writeJSON(w, http.StatusCreated, GalleryItem{
		GeneratedImage: saved,
		TrendName:      catalog.TrendName(saved.TrendID),
	})
}

// DeleteImage removes a record by id.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageID")

	if err := h.galleryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveImage copies a saved record's payloads into object storage.
func (h *GalleryHandler) ArchiveImage(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive storage is not configured")
		return
	}

	id := chi.URLParam(r, "imageID")
	image, err := h.galleryService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load image")
		return
	}

	keys, err := h.archive.ArchiveImage(r.Context(), image)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to archive image")
		return
	}

	writeJSON(w, http.StatusOK, ArchiveResponse{
		Bucket: h.archive.Bucket(),
		Keys:   keys,
	})
}

type SaveImageRequest struct {
	SourceImage    types.ImagePayload `json:"source_image"`
	GeneratedImage types.ImagePayload `json:"generated_image"`
	TrendID        string             `json:"trend_id"`
	Prompt         string             `json:"prompt"`
}

type GalleryItem struct {
	types.GeneratedImage
	TrendName string `json:"trend_name"`
}

type GalleryListResponse struct {
	Items []GalleryItem `json:"items"`
}

type ArchiveResponse struct {
	Bucket string   `json:"bucket"`
	Keys   []string `json:"keys"`
}
