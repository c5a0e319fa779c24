package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trendai/apiserver/internal/catalog"
	"github.com/trendai/apiserver/internal/generate"
	"github.com/trendai/apiserver/types"
)

// maxSourceImageBytes bounds the decoded upload size.
const maxSourceImageBytes = 16 << 20

// GenerateHandler runs variation batches for authenticated clients.
type GenerateHandler struct {
	generator *generate.Generator
}

// NewGenerateHandler constructs a handler over the given generator.
func NewGenerateHandler(generator *generate.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// GenerateRouter registers the generation route on the given router.
func GenerateRouter(r chi.Router, generator *generate.Generator, authMiddleware func(http.Handler) http.Handler) {
	handler := NewGenerateHandler(generator)

	if authMiddleware != nil {
		r.With(authMiddleware).Post("/", handler.Generate)
	} else {
		r.Post("/", handler.Generate)
	}
}

// Generate accepts a source image plus either a trend id or a raw prompt and
// returns the requested number of variations. The batch is all-or-nothing:
// a single provider failure fails the request.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if req.TrendID != "" {
		trend, ok := catalog.Get(req.TrendID)
		if !ok {
			writeError(w, http.StatusNotFound, "trend not found")
			return
		}
		prompt = trend.Prompt
	}
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "a trend id or a prompt is required")
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image must be base64-encoded")
		return
	}
	if len(imageData) == 0 {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	if len(imageData) > maxSourceImageBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}
	if !strings.HasPrefix(req.MIMEType, "image/") {
		writeError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	count := req.Count
	if count == 0 {
		count = generate.DefaultVariationCount
	}
	if count < 1 {
		writeError(w, http.StatusBadRequest, "count must be at least 1")
		return
	}

	variations, err := h.generator.GenerateVariations(r.Context(), imageData, req.MIMEType, prompt, count)
	if err != nil {
		writeError(w, generationStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Prompt:     prompt,
		Variations: variations,
	})
}

// generationStatus maps the generator's error kinds onto HTTP statuses.
func generationStatus(err error) int {
	switch {
	case errors.Is(err, generate.ErrSafetyBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generate.ErrNoCandidates),
		errors.Is(err, generate.ErrNoImageInResponse),
		errors.Is(err, generate.ErrProviderCallFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

type GenerateRequest struct {
	// Image is the base64-encoded source image.
	Image string `json:"image"`

	// MIMEType is the encoding of Image, e.g. "image/png".
	MIMEType string `json:"mime_type"`

	// TrendID selects a catalog prompt. Takes precedence over Prompt.
	TrendID string `json:"trend_id"`

	// Prompt is a raw generation prompt used when no trend is given.
	Prompt string `json:"prompt"`

	// Count is the number of variations; zero selects the default.
	Count int `json:"count"`
}

type GenerateResponse struct {
	Prompt     string               `json:"prompt"`
	Variations []types.ImagePayload `json:"variations"`
}
