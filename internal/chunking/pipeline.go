package chunking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// Embedder is the slice of the embedding client the pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline runs the full semantic chunking flow over a document: sentence
// segmentation, context windows, window embeddings, percentile boundary
// detection, chunk assembly, the merge pass, and final chunk embedding.
type Pipeline struct {
	embedder Embedder
	merger   *Merger
	opts     domain.ChunkingOptions
	logger   *slog.Logger
}

// NewPipeline creates a chunking pipeline. generate may be nil when
// opts.UseLLMForMerge is false.
func NewPipeline(embedder Embedder, generate GenerateFunc, opts domain.ChunkingOptions, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		embedder: embedder,
		merger:   NewMerger(embedder.Embed, generate, opts, logger),
		opts:     opts,
		logger:   logger,
	}
}

// ProcessText chunks a document and embeds the resulting chunks. A window
// embedding failure is logged and leaves that pair out of boundary
// detection; embedding the final chunks is central to the result and any
// failure there aborts the run.
func (p *Pipeline) ProcessText(ctx context.Context, text string) (*domain.ChunkingResult, error) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	units := BuildSentenceUnits(sentences, p.opts.BufferSize)

	for i := range units {
		vec, err := p.embedder.Embed(ctx, units[i].WindowText)
		if err != nil {
			p.logger.Warn("embedding sentence window failed, skipping unit",
				"index", units[i].Index, "error", err)
			continue
		}
		units[i].WindowEmbedding = vec
	}

	ComputeDistances(units)

	boundaries, err := DetectBoundaries(units, p.opts.PercentileThreshold)
	if err != nil {
		return nil, fmt.Errorf("detecting chunk boundaries: %w", err)
	}

	chunks := AssembleChunks(units, boundaries)

	merged, err := p.merger.Merge(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("merging chunks: %w", err)
	}

	texts := make([]string, len(merged))
	for i, c := range merged {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	return &domain.ChunkingResult{
		Chunks:              merged,
		ChunkEmbeddings:     embeddings,
		AggregatedEmbedding: MeanVector(embeddings),
	}, nil
}
