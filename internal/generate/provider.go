package generate

import "context"

// Request carries one source image and one prompt to the provider.
type Request struct {
	// ImageData is the raw encoded source image.
	ImageData []byte

	// MIMEType is the encoding of ImageData, e.g. "image/png".
	MIMEType string

	// Prompt is the generation instruction.
	Prompt string
}

// Blob is one inline binary payload in a provider response part.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one content part of a response candidate. Exactly one of Text or
// InlineData is set.
type Part struct {
	Text       string
	InlineData *Blob
}

// Candidate is one generation result in a provider response.
type Candidate struct {
	// FinishReason indicates why generation stopped, e.g. "STOP" or "SAFETY".
	FinishReason string

	// Parts holds the candidate's content.
	Parts []Part
}

// Response is the provider-neutral shape of a generation response.
type Response struct {
	Candidates []Candidate
}

// Provider abstracts the remote multimodal generation endpoint. Every call
// is a metered, billable remote request; implementations must not cache.
type Provider interface {
	GenerateContent(ctx context.Context, req Request) (*Response, error)
}
