package analyzer

import "fmt"

const (
	// NoTitle is used when a page has no usable <title>.
	NoTitle = "No Title"
	// NoDescription is used when a page has no usable meta description.
	NoDescription = "No Description"
)

// SignalRecord holds the on-page SEO signals of a single page.
// A record is built from one parse pass and never modified afterwards.
type SignalRecord struct {
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Headings    HeadingCounts `json:"headings"`
	Links       LinkCounts    `json:"links"`
	Images      ImageCounts   `json:"images"`
}

type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
}

// LinkCounts classifies anchors; Internal + External == Total.
type LinkCounts struct {
	Total    int `json:"total"`
	Internal int `json:"internal"`
	External int `json:"external"`
}

type ImageCounts struct {
	Total      int `json:"total"`
	MissingAlt int `json:"missingAlt"`
}

// ExtractionError reports that a page could not be turned into a
// SignalRecord. Retrieval, envelope and parse failures all surface as this
// type; the cause is kept for logging only.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
