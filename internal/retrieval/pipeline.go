package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// QueryEmbedder embeds search queries.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Config holds the retrieval tuning knobs.
type Config struct {
	// TopK is how many passages to fetch and keep per query.
	TopK int
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() Config {
	return Config{TopK: 5}
}

// Result is the outcome of one retrieval run.
type Result struct {
	// RefinedQuery is the search-optimized rewrite of the user query, or
	// the original query when refinement failed.
	RefinedQuery string

	// Passages are the final re-ranked passages the answer drew on.
	Passages []string

	// Answer is the synthesized prose answer. Empty when synthesis failed;
	// callers substitute their own fallback message.
	Answer string
}

// Pipeline answers a query against one namespace in four sequential stages:
// refine the query, vector-search for candidate passages, re-rank them, and
// synthesize a prose answer. Every LLM stage degrades gracefully; only the
// query embedding and the vector search can fail the run.
type Pipeline struct {
	embedder  QueryEmbedder
	index     driven.VectorIndex
	generator driven.GenerativeService
	cfg       Config
	logger    *slog.Logger
}

func NewPipeline(embedder QueryEmbedder, index driven.VectorIndex, generator driven.GenerativeService, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		embedder:  embedder,
		index:     index,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Retrieve runs the full four-stage flow for query within namespace.
func (p *Pipeline) Retrieve(ctx context.Context, namespace, query string) (*Result, error) {
	refined := p.refine(ctx, query)

	passages, err := p.search(ctx, namespace, refined)
	if err != nil {
		return nil, err
	}

	ranked := p.rerank(ctx, refined, passages)
	answer := p.synthesize(ctx, refined, ranked)

	return &Result{
		RefinedQuery: refined,
		Passages:     ranked,
		Answer:       answer,
	}, nil
}

// refine rewrites the user query into a search-optimized form. Any failure
// falls back to the original query; refinement never blocks the pipeline.
func (p *Pipeline) refine(ctx context.Context, query string) string {
	prompt := fmt.Sprintf(`Rewrite the following question as a concise search query optimized for semantic retrieval.
Return only the rewritten query, with no explanation.

Question: %s`, query)

	refined, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		p.logger.Warn("query refinement failed, using original query", "error", err)
		return query
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return query
	}
	return refined
}

// search embeds the refined query and collects the top unique passages from
// the namespace, with scores normalized to [0,1] by the in-batch maximum.
// Failures here abort the run: without candidates there is nothing to answer
// from.
func (p *Pipeline) search(ctx context.Context, namespace, refined string) ([]string, error) {
	vector, err := p.embedder.EmbedQuery(ctx, refined)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := p.index.Query(ctx, namespace, vector, p.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	// Normalize by the in-batch maximum. A non-positive maximum carries no
	// ranking signal, so the raw scores stand.
	var max float64
	for _, m := range matches {
		if m.Score > max {
			max = m.Score
		}
	}
	scored := make([]domain.ScoredPassage, len(matches))
	copy(scored, matches)
	if max > 0 {
		for i := range scored {
			scored[i].Score /= max
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	seen := make(map[string]struct{}, len(scored))
	var passages []string
	for _, m := range scored {
		if _, dup := seen[m.Text]; dup {
			continue
		}
		seen[m.Text] = struct{}{}
		passages = append(passages, m.Text)
		if len(passages) == p.cfg.TopK {
			break
		}
	}
	return passages, nil
}

// rerank asks the LLM to reorder passages by relevance to the refined
// query. On any failure or malformed response the similarity order from the
// search stage stands.
func (p *Pipeline) rerank(ctx context.Context, refined string, passages []string) []string {
	if len(passages) < 2 {
		return passages
	}

	var numbered strings.Builder
	for i, passage := range passages {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, passage)
	}

	prompt := fmt.Sprintf(`Order the following passages from most to least relevant to the query.
Respond with a JSON array of the passage numbers in the new order, e.g. [2,1,3].
Return only the JSON array.

Query: %s

Passages:
%s`, refined, numbered.String())

	raw, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		p.logger.Warn("re-ranking failed, keeping similarity order", "error", err)
		return passages
	}

	order, err := parseRankOrder(raw, len(passages))
	if err != nil {
		p.logger.Warn("re-ranking response malformed, keeping similarity order", "error", err)
		return passages
	}

	ranked := make([]string, 0, len(passages))
	for _, idx := range order {
		ranked = append(ranked, passages[idx])
	}
	return ranked
}

// parseRankOrder parses a JSON array of 1-based passage numbers into a
// 0-based permutation of [0,n). Any missing, duplicate, or out-of-range
// entry is an error.
func parseRankOrder(raw string, n int) ([]int, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in %q", raw)
	}

	var numbers []int
	if err := json.Unmarshal([]byte(raw[start:end+1]), &numbers); err != nil {
		return nil, fmt.Errorf("parsing rank order: %w", err)
	}
	if len(numbers) != n {
		return nil, fmt.Errorf("expected %d entries, got %d", n, len(numbers))
	}

	seen := make(map[int]struct{}, n)
	order := make([]int, 0, n)
	for _, num := range numbers {
		idx := num - 1
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("passage number %d out of range", num)
		}
		if _, dup := seen[idx]; dup {
			return nil, fmt.Errorf("passage number %d repeated", num)
		}
		seen[idx] = struct{}{}
		order = append(order, idx)
	}
	return order, nil
}

// synthesize produces the final prose answer from the ranked passages. On
// failure it returns an empty string; callers substitute their fallback
// message.
func (p *Pipeline) synthesize(ctx context.Context, refined string, passages []string) string {
	if len(passages) == 0 {
		return ""
	}

	prompt := fmt.Sprintf(`Answer the query using only the passages below. If the passages do not
contain the answer, say so. Respond with prose only.

Query: %s

Passages:
%s`, refined, strings.Join(passages, "\n\n"))

	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		p.logger.Warn("answer synthesis failed", "error", err)
		return ""
	}
	return strings.TrimSpace(answer)
}
