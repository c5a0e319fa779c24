package generate

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"

	"github.com/trendai/apiserver/config"
)

// DefaultModel is the Gemini image-editing model used when none is
// configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

// GeminiProvider calls the Gemini API through the official SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider constructs a provider from config.
func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// GenerateContent issues one generation request carrying the source image
// and the prompt, and maps the SDK response into the provider-neutral shape.
func (g *GeminiProvider) GenerateContent(ctx context.Context, req Request) (*Response, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: req.MIMEType, Data: req.ImageData}},
			{Text: req.Prompt},
		},
	}}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, err
	}

	out := &Response{}
	for _, cand := range res.Candidates {
		if cand == nil {
			continue
		}
		mapped := Candidate{FinishReason: string(cand.FinishReason)}
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if part == nil {
					continue
				}
				p := Part{Text: part.Text}
				if part.InlineData != nil {
					p.InlineData = &Blob{
						MIMEType: part.InlineData.MIMEType,
						Data:     part.InlineData.Data,
					}
				}
				mapped.Parts = append(mapped.Parts, p)
			}
		}
		out.Candidates = append(out.Candidates, mapped)
	}
	return out, nil
}
