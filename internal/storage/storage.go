// Package storage archives saved gallery images into object storage, the
// server-side analogue of the original app's download action.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/trendai/apiserver/types"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Archive wraps an ObjectStorage backend and lays out archived gallery
// images under per-record prefixes.
type Archive struct {
	backend ObjectStorage
}

// NewArchive constructs an Archive over the provided backend.
func NewArchive(backend ObjectStorage) *Archive {
	return &Archive{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	return a.backend.EnsureBucket(ctx)
}

// Bucket returns the configured bucket name.
func (a *Archive) Bucket() string {
	return a.backend.Bucket()
}

// ArchiveImage stores both payloads of a saved gallery record. The source
// and generated images land under the record's id prefix; the returned keys
// identify the stored objects.
func (a *Archive) ArchiveImage(ctx context.Context, image types.GeneratedImage) ([]string, error) {
	entries := []struct {
		name    string
		payload types.ImagePayload
	}{
		{"source", image.SourceImage},
		{"generated", image.GeneratedImage},
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := base64.StdEncoding.DecodeString(entry.payload.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s image: %w", entry.name, err)
		}
		key := objectKey(image.ID, entry.name, entry.payload.MIMEType)
		if err := a.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), entry.payload.MIMEType); err != nil {
			return nil, fmt.Errorf("store %s image: %w", entry.name, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Open opens a reader for a previously archived object.
func (a *Archive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return a.backend.Get(ctx, key)
}

// Remove deletes a previously archived object.
func (a *Archive) Remove(ctx context.Context, key string) error {
	return a.backend.Delete(ctx, key)
}

func objectKey(imageID, name, mimeType string) string {
	ext := ".bin"
	if suffix, ok := strings.CutPrefix(mimeType, "image/"); ok && suffix != "" {
		ext = "." + suffix
	} else if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		ext = exts[len(exts)-1]
	}
	return fmt.Sprintf("%s/%s%s", imageID, name, ext)
}
