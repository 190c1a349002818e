package domain

// SentenceUnit is a sentence with its surrounding context window.
// WindowEmbedding is attached after the context window has been embedded and
// stays nil when the embedding call failed (the unit is then excluded from
// boundary-distance computation).
type SentenceUnit struct {
	Text            string
	Index           int // 0-based position in the original sentence sequence
	WindowText      string
	WindowEmbedding []float32
	DistanceToNext  *float64 // cosine distance to the next unit, nil if either embedding is missing
}

// Chunk is a contiguous run of sentences treated as one retrievable unit.
// StartIndex and EndIndex are inclusive original sentence ordinals and are
// preserved across merges: a merged chunk spans the min start and max end of
// its constituents.
type Chunk struct {
	Text       string `json:"text"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// Sentences returns the number of sentences the chunk covers.
func (c Chunk) Sentences() int {
	return c.EndIndex - c.StartIndex + 1
}

// ChunkingOptions tune the semantic chunking pipeline.
type ChunkingOptions struct {
	// BufferSize is the number of neighbouring sentences on each side of a
	// sentence included in its context window
	BufferSize int

	// PercentileThreshold selects the cosine-distance percentile (0,100)
	// above which a semantic boundary is declared
	PercentileThreshold float64

	// MergeLengthThreshold merges adjacent chunks unconditionally when both
	// are shorter than this many characters
	MergeLengthThreshold int

	// CosineSimThreshold merges adjacent chunks whose embeddings are more
	// similar than this
	CosineSimThreshold float64

	// UseLLMForMerge asks the generative service for merge decisions,
	// falling back to the heuristic on any failure
	UseLLMForMerge bool
}

// DefaultChunkingOptions returns the reference configuration.
func DefaultChunkingOptions() ChunkingOptions {
	return ChunkingOptions{
		BufferSize:           1,
		PercentileThreshold:  90,
		MergeLengthThreshold: 300,
		CosineSimThreshold:   0.8,
		UseLLMForMerge:       false,
	}
}

// ChunkingResult is the output of a full chunking run.
type ChunkingResult struct {
	Chunks []Chunk

	// ChunkEmbeddings holds one vector per chunk, in chunk order
	ChunkEmbeddings [][]float32

	// AggregatedEmbedding is the element-wise mean of all chunk embeddings.
	// Empty when no chunk could be embedded.
	AggregatedEmbedding []float32
}
