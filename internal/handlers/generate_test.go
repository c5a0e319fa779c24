package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trendai/apiserver/internal/catalog"
	"github.com/trendai/apiserver/internal/generate"
)

// scriptedProvider returns one canned response per call, in order.
type scriptedProvider struct {
	requests  []generate.Request
	responses []*generate.Response
	err       error
}

func (p *scriptedProvider) GenerateContent(ctx context.Context, req generate.Request) (*generate.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	resp := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return resp, nil
}

func imageResponse(data []byte) *generate.Response {
	return &generate.Response{
		Candidates: []generate.Candidate{{
			FinishReason: "STOP",
			Parts:        []generate.Part{{InlineData: &generate.Blob{MIMEType: "image/png", Data: data}}},
		}},
	}
}

func newGenerateRouter(provider generate.Provider) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/generate", func(r chi.Router) {
		GenerateRouter(r, generate.NewGenerator(provider), nil)
	})
	return router
}

func TestGenerateResolvesTrendPrompt(t *testing.T) {
	provider := &scriptedProvider{responses: []*generate.Response{imageResponse([]byte("out"))}}
	router := newGenerateRouter(provider)

	trends := catalog.List()
	require.NotEmpty(t, trends)

	rec := postJSON(t, router, "/generate", GenerateRequest{
		Image:    base64.StdEncoding.EncodeToString([]byte("src")),
		MIMEType: "image/png",
		TrendID:  trends[0].ID,
		Count:    2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, trends[0].Prompt, resp.Prompt)
	require.Len(t, resp.Variations, 2)
	require.Len(t, provider.requests, 2)
	require.Equal(t, trends[0].Prompt, provider.requests[0].Prompt)
	require.Equal(t, []byte("src"), provider.requests[0].ImageData)
}

func TestGenerateUnknownTrend(t *testing.T) {
	provider := &scriptedProvider{responses: []*generate.Response{imageResponse([]byte("out"))}}
	router := newGenerateRouter(provider)

	rec := postJSON(t, router, "/generate", GenerateRequest{
		Image:    base64.StdEncoding.EncodeToString([]byte("src")),
		MIMEType: "image/png",
		TrendID:  "no-such-trend",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, provider.requests)
}

func TestGenerateValidation(t *testing.T) {
	provider := &scriptedProvider{responses: []*generate.Response{imageResponse([]byte("out"))}}
	router := newGenerateRouter(provider)

	cases := []struct {
		name string
		req  GenerateRequest
		code int
	}{
		{
			name: "no prompt or trend",
			req:  GenerateRequest{Image: base64.StdEncoding.EncodeToString([]byte("src")), MIMEType: "image/png"},
			code: http.StatusBadRequest,
		},
		{
			name: "invalid base64",
			req:  GenerateRequest{Image: "not base64!!", MIMEType: "image/png", Prompt: "p"},
			code: http.StatusBadRequest,
		},
		{
			name: "empty image",
			req:  GenerateRequest{MIMEType: "image/png", Prompt: "p"},
			code: http.StatusBadRequest,
		},
		{
			name: "non-image mime type",
			req:  GenerateRequest{Image: base64.StdEncoding.EncodeToString([]byte("src")), MIMEType: "text/plain", Prompt: "p"},
			code: http.StatusBadRequest,
		},
		{
			name: "negative count",
			req:  GenerateRequest{Image: base64.StdEncoding.EncodeToString([]byte("src")), MIMEType: "image/png", Prompt: "p", Count: -1},
			code: http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, router, "/generate", tc.req)
			require.Equal(t, tc.code, rec.Code)
		})
	}
	require.Empty(t, provider.requests)
}

func TestGenerateErrorStatuses(t *testing.T) {
	safety := &generate.Response{Candidates: []generate.Candidate{{FinishReason: "SAFETY"}}}

	cases := []struct {
		name     string
		provider *scriptedProvider
		code     int
	}{
		{"safety blocked", &scriptedProvider{responses: []*generate.Response{safety}}, http.StatusUnprocessableEntity},
		{"no candidates", &scriptedProvider{responses: []*generate.Response{{}}}, http.StatusBadGateway},
		{"provider failure", &scriptedProvider{err: context.DeadlineExceeded}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newGenerateRouter(tc.provider)
			rec := postJSON(t, router, "/generate", GenerateRequest{
				Image:    base64.StdEncoding.EncodeToString([]byte("src")),
				MIMEType: "image/png",
				Prompt:   "p",
			})
			require.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestGenerateDefaultCount(t *testing.T) {
	provider := &scriptedProvider{responses: []*generate.Response{imageResponse([]byte("out"))}}
	router := newGenerateRouter(provider)

	rec := postJSON(t, router, "/generate", GenerateRequest{
		Image:    base64.StdEncoding.EncodeToString([]byte("src")),
		MIMEType: "image/png",
		Prompt:   "p",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, provider.requests, generate.DefaultVariationCount)
}
