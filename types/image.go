package types

// ImagePayload carries one encoded image as produced by the generation
// provider or uploaded by a client.
type ImagePayload struct {
	// Data is the base64-encoded image bytes.
	Data string `json:"data"`

	// MIMEType is the encoding of Data, e.g. "image/png".
	MIMEType string `json:"mime_type"`
}

// GeneratedImage is a saved gallery record. Records are immutable once
// created; they are removed only by explicit deletion or a wholesale
// gallery clear.
type GeneratedImage struct {
	// ID is the unique, time-derived identifier of the record.
	ID string `json:"id"`

	// SourceImage is the image the user uploaded or captured.
	SourceImage ImagePayload `json:"source_image"`

	// GeneratedImage is the variation the user chose to save.
	GeneratedImage ImagePayload `json:"generated_image"`

	// TrendID is a soft reference to the Trend used for generation. It may
	// dangle if the catalog changes; readers resolve it to a placeholder
	// label rather than fail.
	TrendID string `json:"trend_id"`

	// Prompt is the prompt text that produced the generated image.
	Prompt string `json:"prompt"`

	// Timestamp is the creation time in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}
