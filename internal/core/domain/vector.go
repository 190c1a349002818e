package domain

// VectorRecord is one entry upserted into the vector index.
// ID is a content hash of the text so repeated upserts are idempotent.
type VectorRecord struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ScoredPassage is a retrieved chunk text with its similarity score.
// Scores are normalised to [0,1] within one retrieval call.
type ScoredPassage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
