package solr

import "time"

// Config holds configuration for the Solr client.
type Config struct {
	// BaseURL is the Solr collection URL, e.g., "http://solr:8983/solr/graph".
	// An empty BaseURL disables the client.
	BaseURL string
	// Timeout is the HTTP request timeout.
	Timeout time.Duration
	// MaxResults is the default maximum number of search results.
	MaxResults int
}

// SearchResponse represents the Solr search response.
type SearchResponse struct {
	Response     ResponseBody         `json:"response"`
	Highlighting map[string]Highlight `json:"highlighting,omitempty"`
}

// ResponseBody contains the main response data.
type ResponseBody struct {
	NumFound int        `json:"numFound"` //nolint:tagliatelle // Solr API field name
	Start    int        `json:"start"`
	Docs     []Document `json:"docs"`
}

// Highlight contains highlighted snippets for a document.
type Highlight map[string][]string

// Document represents a Solr document.
// Fields are flexible to accommodate both claim and transcript documents.
type Document struct {
	// Core fields
	ID      string `json:"id"`
	Version int64  `json:"_version_,omitempty"` //nolint:tagliatelle // Solr internal field name

	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	IndexedAt time.Time `json:"indexed_at,omitempty"`

	// Claim fields
	ClaimID     string  `json:"claim_id,omitempty"`
	Category    string  `json:"category,omitempty"`
	Confidence  string  `json:"confidence,omitempty"`
	SourceQuote string  `json:"source_quote,omitempty"`
	Timestamp   float64 `json:"timestamp_sec,omitempty"`

	// Video fields
	VideoID    string `json:"video_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Language   string `json:"language,omitempty"`
}

// IndexDocument is a simplified document for indexing.
// It uses interface{} to allow flexible field population.
type IndexDocument map[string]interface{}

// NewIndexDocument creates a new IndexDocument with the given ID.
func NewIndexDocument(id string) IndexDocument {
	return IndexDocument{
		"id": id,
	}
}

// SetField sets a field on the document.
func (d IndexDocument) SetField(name string, value interface{}) IndexDocument {
	d[name] = value
	return d
}

// Document kind constants.
const (
	KindClaim      = "claim"
	KindTranscript = "transcript"
)
