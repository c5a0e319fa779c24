package generate

import "errors"

// Generation failures are classified into four kinds. Any one of them aborts
// the remaining variations in a batch; none are retried automatically.
var (
	// ErrNoCandidates means the provider returned an empty result set.
	ErrNoCandidates = errors.New("the model returned no candidates")

	// ErrSafetyBlocked means the provider flagged the request or output
	// on safety grounds.
	ErrSafetyBlocked = errors.New("the request was blocked for safety reasons")

	// ErrNoImageInResponse means the provider replied without image data,
	// e.g. with text only.
	ErrNoImageInResponse = errors.New("no image was generated in the response")

	// ErrProviderCallFailed means the provider call itself failed
	// (transport, auth, or an unknown provider error).
	ErrProviderCallFailed = errors.New("image generation request failed")
)
