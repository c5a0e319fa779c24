package types

// TrendCategory is the fixed set of catalog categories a Trend may belong to.
type TrendCategory string

const (
	CategoryArt         TrendCategory = "Art"
	CategoryCharacters  TrendCategory = "Characters"
	CategoryPoster      TrendCategory = "Poster"
	CategoryBackgrounds TrendCategory = "Backgrounds"
	CategoryFashion     TrendCategory = "Fashion"
)

// Trend represents a stylistic template in the catalog. Trends are defined at
// build time and never mutated at runtime.
type Trend struct {
	// ID is the unique identifier of the trend.
	ID string `json:"id"`

	// Name is the human-readable display name of the trend.
	Name string `json:"name"`

	// Description is a short blurb shown alongside the trend.
	Description string `json:"description"`

	// Prompt is the full generation prompt sent to the image model when
	// this trend is applied to a source image.
	Prompt string `json:"prompt"`

	// ExampleImage is a URL referencing a preview image for the trend.
	ExampleImage string `json:"example_image"`

	// Category is the catalog category the trend is filed under.
	Category TrendCategory `json:"category"`
}
