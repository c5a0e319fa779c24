package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/trendai/apiserver/internal/kvstore"
	"github.com/trendai/apiserver/types"
)

// GalleryService manages the persisted collection of saved generation
// results. Storage order is insertion order; newest-first ordering is a
// read-time concern.
type GalleryService struct {
	store  *kvstore.Store
	logger *slog.Logger
}

// NewGalleryService constructs a GalleryService over the store.
func NewGalleryService(store *kvstore.Store, logger *slog.Logger) *GalleryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{store: store, logger: logger}
}

// List returns the saved records sorted newest-first by timestamp.
func (s *GalleryService) List(ctx context.Context) []types.GeneratedImage {
	images := s.read(ctx)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Timestamp > images[j].Timestamp
	})
	return images
}

// Get returns the record with the given id, or kvstore.ErrNotFound.
func (s *GalleryService) Get(ctx context.Context, id string) (types.GeneratedImage, error) {
	for _, img := range s.read(ctx) {
		if img.ID == id {
			return img, nil
		}
	}
	return types.GeneratedImage{}, kvstore.ErrNotFound
}

// Save assigns a time-derived id and creation timestamp to the record and
// appends it to the gallery. The saved record is returned.
func (s *GalleryService) Save(ctx context.Context, image types.GeneratedImage) (types.GeneratedImage, error) {
	now := time.Now()
	image.ID = fmt.Sprintf("trendai-%d", now.UnixNano())
	image.Timestamp = now.UnixMilli()

	images := append(s.read(ctx), image)
	if err := s.write(ctx, images); err != nil {
		return types.GeneratedImage{}, err
	}
	return image, nil
}

// Delete removes the record with the given id, or returns
// kvstore.ErrNotFound if no such record exists.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	images := s.read(ctx)
	kept := images[:0]
	found := false
	for _, img := range images {
		if img.ID == id {
			found = true
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return kvstore.ErrNotFound
	}
	return s.write(ctx, kept)
}

// Subscribe registers fn for gallery changes. fn is invoked once immediately
// with the current list and again when another context mutates the gallery.
// The returned function unsubscribes.
func (s *GalleryService) Subscribe(ctx context.Context, fn func(images []types.GeneratedImage)) func() {
	return s.store.Subscribe(ctx, GalleryKey, func(value []byte, ok bool) {
		if !ok {
			fn(nil)
			return
		}
		var images []types.GeneratedImage
		if err := json.Unmarshal(value, &images); err != nil {
			s.logger.Warn("gallery: corrupt gallery record, treating as empty", "error", err)
			fn(nil)
			return
		}
		fn(images)
	})
}

// read loads the stored list. Absent or corrupt state degrades to an empty
// gallery; corruption is logged, never surfaced.
func (s *GalleryService) read(ctx context.Context) []types.GeneratedImage {
	raw, err := s.store.Get(ctx, GalleryKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn("gallery: read failed, treating as empty", "error", err)
		}
		return nil
	}
	var images []types.GeneratedImage
	if err := json.Unmarshal(raw, &images); err != nil {
		s.logger.Warn("gallery: corrupt gallery record, treating as empty", "error", err)
		return nil
	}
	return images
}

func (s *GalleryService) write(ctx context.Context, images []types.GeneratedImage) error {
	if images == nil {
		images = []types.GeneratedImage{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, GalleryKey, raw)
}
