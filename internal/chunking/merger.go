package chunking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// EmbedFunc produces an embedding for a single text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// GenerateFunc produces a completion for a prompt.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Merger folds adjacent chunks back together when the boundary between them
// looks spurious. The decision is heuristic by default (both chunks short, or
// their embeddings close); when an LLM is supplied and enabled it arbitrates
// instead, with the heuristic as fallback on any failure.
type Merger struct {
	embed    EmbedFunc
	generate GenerateFunc
	opts     domain.ChunkingOptions
	logger   *slog.Logger
}

// NewMerger creates a merger. generate may be nil when opts.UseLLMForMerge
// is false.
func NewMerger(embed EmbedFunc, generate GenerateFunc, opts domain.ChunkingOptions, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{embed: embed, generate: generate, opts: opts, logger: logger}
}

// Merge performs a single left-to-right pass over chunks, merging each
// neighbour into the accumulated chunk whenever the decision says so. Index
// ranges stay contiguous: a merged chunk spans from the first chunk's start
// to the second chunk's end.
func (m *Merger) Merge(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) < 2 {
		return chunks, nil
	}

	merged := make([]domain.Chunk, 0, len(chunks))
	current := chunks[0]

	for _, next := range chunks[1:] {
		if m.shouldMerge(ctx, current, next) {
			current = domain.Chunk{
				Text:       current.Text + " " + next.Text,
				StartIndex: current.StartIndex,
				EndIndex:   next.EndIndex,
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged, nil
}

// shouldMerge never fails: any error along the way downgrades to the next
// decision tier, and ultimately to keeping the chunks separate.
func (m *Merger) shouldMerge(ctx context.Context, a, b domain.Chunk) bool {
	if m.opts.UseLLMForMerge && m.generate != nil {
		if ok, err := m.llmDecision(ctx, a, b); err == nil {
			return ok
		} else {
			m.logger.Warn("llm merge decision failed, falling back to heuristic", "error", err)
		}
	}
	return m.heuristicDecision(ctx, a, b)
}

func (m *Merger) heuristicDecision(ctx context.Context, a, b domain.Chunk) bool {
	// Two short fragments always merge.
	if utf8.RuneCountInString(a.Text) < m.opts.MergeLengthThreshold &&
		utf8.RuneCountInString(b.Text) < m.opts.MergeLengthThreshold {
		return true
	}

	va, err := m.embed(ctx, a.Text)
	if err != nil {
		m.logger.Warn("embedding chunk for merge decision failed, keeping chunks separate", "error", err)
		return false
	}
	vb, err := m.embed(ctx, b.Text)
	if err != nil {
		m.logger.Warn("embedding chunk for merge decision failed, keeping chunks separate", "error", err)
		return false
	}
	return CosineSimilarity(va, vb) > m.opts.CosineSimThreshold
}

func (m *Merger) llmDecision(ctx context.Context, a, b domain.Chunk) (bool, error) {
	prompt := fmt.Sprintf(`You decide whether two adjacent text chunks belong to the same topic.
Respond with JSON only, in the form {"merge": true} or {"merge": false}.

Chunk A:
%s

Chunk B:
%s`, a.Text, b.Text)

	raw, err := m.generate(ctx, prompt)
	if err != nil {
		return false, err
	}

	var decision struct {
		Merge bool `json:"merge"`
	}
	cleaned := extractJSONObject(raw)
	if err := json.Unmarshal([]byte(cleaned), &decision); err != nil {
		return false, fmt.Errorf("parsing merge decision %q: %w", raw, err)
	}
	return decision.Merge, nil
}

// extractJSONObject pulls the first {...} object out of a completion that may
// be wrapped in prose or markdown fences.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
