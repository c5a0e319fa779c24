// Package generate produces styled variations of a source image by calling
// a remote multimodal generation endpoint once per variation.
package generate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/trendai/apiserver/types"
)

// DefaultVariationCount is the number of variations requested when the
// caller does not specify one.
const DefaultVariationCount = 3

// finishReasonSafety is the provider finish reason for a safety rejection.
const finishReasonSafety = "SAFETY"

// Generator orchestrates variation batches over a Provider.
type Generator struct {
	provider Provider
}

// NewGenerator constructs a Generator over the given provider.
func NewGenerator(provider Provider) *Generator {
	return &Generator{provider: provider}
}

// GenerateVariations produces count independently generated variations of
// the source image for the given prompt.
//
// Requests are issued strictly sequentially: request i+1 is not sent until
// request i has resolved. This is a deliberate policy to stay under the
// provider's rate limits, not an incidental choice.
//
// The batch is fail-fast: the first failed request aborts it, the error
// carries the most specific known kind, and no partial results are returned.
func (g *Generator) GenerateVariations(ctx context.Context, imageData []byte, mimeType, prompt string, count int) ([]types.ImagePayload, error) {
	if len(imageData) == 0 {
		return nil, errors.New("source image is required")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported mime type %q", mimeType)
	}
	if count < 1 {
		return nil, fmt.Errorf("variation count must be at least 1, got %d", count)
	}

	req := Request{ImageData: imageData, MIMEType: mimeType, Prompt: prompt}

	variations := make([]types.ImagePayload, 0, count)
	for i := 0; i < count; i++ {
		payload, err := g.generateOne(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("variation %d of %d: %w", i+1, count, err)
		}
		variations = append(variations, payload)
	}
	return variations, nil
}

func (g *Generator) generateOne(ctx context.Context, req Request) (types.ImagePayload, error) {
	res, err := g.provider.GenerateContent(ctx, req)
	if err != nil {
		return types.ImagePayload{}, fmt.Errorf("%w: %v", ErrProviderCallFailed, err)
	}
	return classify(res)
}

// classify maps a provider response onto exactly one outcome: a usable image
// payload or one of the three response-shaped error kinds.
func classify(res *Response) (types.ImagePayload, error) {
	if res == nil || len(res.Candidates) == 0 {
		return types.ImagePayload{}, ErrNoCandidates
	}

	cand := res.Candidates[0]
	if cand.FinishReason == finishReasonSafety {
		return types.ImagePayload{}, ErrSafetyBlocked
	}

	for _, part := range cand.Parts {
		if part.InlineData == nil {
			continue
		}
		if !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
			continue
		}
		return types.ImagePayload{
			Data:     encodePayload(part.InlineData.Data),
			MIMEType: part.InlineData.MIMEType,
		}, nil
	}
	return types.ImagePayload{}, ErrNoImageInResponse
}

func encodePayload(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
