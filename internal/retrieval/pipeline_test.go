package retrieval

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

type stubIndex struct {
	matches   []domain.ScoredPassage
	err       error
	namespace string
	topK      int
}

func (s *stubIndex) Upsert(_ context.Context, _ string, _ []domain.VectorRecord) error {
	return nil
}

func (s *stubIndex) Query(_ context.Context, namespace string, _ []float32, topK int) ([]domain.ScoredPassage, error) {
	s.namespace = namespace
	s.topK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func (s *stubIndex) DeleteNamespace(_ context.Context, _ string) error { return nil }
func (s *stubIndex) HealthCheck(_ context.Context) error               { return nil }

// scriptedGenerator answers each prompt by matching on its leading verb;
// the three stages use distinct instructions.
type scriptedGenerator struct {
	refineResponse string
	refineErr      error
	rerankResponse string
	rerankErr      error
	synthResponse  string
	synthErr       error
	prompts        []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	switch {
	case strings.HasPrefix(prompt, "Rewrite"):
		return g.refineResponse, g.refineErr
	case strings.HasPrefix(prompt, "Order"):
		return g.rerankResponse, g.rerankErr
	default:
		return g.synthResponse, g.synthErr
	}
}

func (g *scriptedGenerator) Model() string                { return "scripted-test-model" }
func (g *scriptedGenerator) Ping(_ context.Context) error { return nil }
func (g *scriptedGenerator) Close() error                 { return nil }

func happyGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		refineResponse: "refined query",
		rerankResponse: "[1,2]",
		synthResponse:  "The synthesized answer.",
	}
}

func TestPipeline_Retrieve(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{
		{Text: "first passage", Score: 10},
		{Text: "second passage", Score: 5},
	}}
	gen := happyGenerator()
	p := NewPipeline(&stubEmbedder{}, index, gen, DefaultConfig(), nil)

	result, err := p.Retrieve(context.Background(), "project-ns", "what is it?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RefinedQuery != "refined query" {
		t.Errorf("expected refined query, got %q", result.RefinedQuery)
	}
	if index.namespace != "project-ns" {
		t.Errorf("expected query scoped to namespace, got %q", index.namespace)
	}
	if index.topK != 5 {
		t.Errorf("expected default topK 5, got %d", index.topK)
	}
	if result.Answer != "The synthesized answer." {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	want := []string{"first passage", "second passage"}
	if !reflect.DeepEqual(result.Passages, want) {
		t.Errorf("expected passages %v, got %v", want, result.Passages)
	}
}

func TestPipeline_RefineFailureFallsBackToOriginal(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{{Text: "p", Score: 1}}}
	gen := happyGenerator()
	gen.refineErr = errors.New("llm down")
	p := NewPipeline(&stubEmbedder{}, index, gen, DefaultConfig(), nil)

	result, err := p.Retrieve(context.Background(), "ns", "original question")
	if err != nil {
		t.Fatalf("expected pipeline to survive refine failure, got %v", err)
	}
	if result.RefinedQuery != "original question" {
		t.Errorf("expected original query, got %q", result.RefinedQuery)
	}
}

func TestPipeline_BlankRefinementFallsBackToOriginal(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{{Text: "p", Score: 1}}}
	gen := happyGenerator()
	gen.refineResponse = "  \n "
	p := NewPipeline(&stubEmbedder{}, index, gen, DefaultConfig(), nil)

	result, err := p.Retrieve(context.Background(), "ns", "original question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RefinedQuery != "original question" {
		t.Errorf("expected original query, got %q", result.RefinedQuery)
	}
}

func TestPipeline_QueryEmbeddingFailureAborts(t *testing.T) {
	p := NewPipeline(&stubEmbedder{err: errors.New("no embedder")}, &stubIndex{}, happyGenerator(), DefaultConfig(), nil)

	if _, err := p.Retrieve(context.Background(), "ns", "q"); err == nil {
		t.Fatal("expected query embedding error to abort the run")
	}
}

func TestPipeline_IndexFailureAborts(t *testing.T) {
	index := &stubIndex{err: errors.New("index offline")}
	p := NewPipeline(&stubEmbedder{}, index, happyGenerator(), DefaultConfig(), nil)

	if _, err := p.Retrieve(context.Background(), "ns", "q"); err == nil {
		t.Fatal("expected vector index error to abort the run")
	}
}

func TestSearch_NormalizationAndDedup(t *testing.T) {
	// Raw scores 10/5/2 normalize to 1.0/0.5/0.2; the duplicate text "X" is
	// collapsed keeping its best-scored occurrence.
	index := &stubIndex{matches: []domain.ScoredPassage{
		{Text: "X", Score: 10},
		{Text: "X", Score: 5},
		{Text: "Y", Score: 2},
	}}
	p := NewPipeline(&stubEmbedder{}, index, happyGenerator(), DefaultConfig(), nil)

	passages, err := p.search(context.Background(), "ns", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"X", "Y"}
	if !reflect.DeepEqual(passages, want) {
		t.Errorf("expected %v, got %v", want, passages)
	}
}

func TestSearch_UnsortedScoresSortedDescending(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{
		{Text: "low", Score: 2},
		{Text: "high", Score: 10},
		{Text: "mid", Score: 5},
	}}
	p := NewPipeline(&stubEmbedder{}, index, happyGenerator(), DefaultConfig(), nil)

	passages, err := p.search(context.Background(), "ns", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"high", "mid", "low"}
	if !reflect.DeepEqual(passages, want) {
		t.Errorf("expected descending order %v, got %v", want, passages)
	}
}

func TestSearch_ZeroMaxSkipsNormalization(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{
		{Text: "a", Score: 0},
		{Text: "b", Score: 0},
	}}
	p := NewPipeline(&stubEmbedder{}, index, happyGenerator(), DefaultConfig(), nil)

	passages, err := p.search(context.Background(), "ns", "q")
	if err != nil {
		t.Fatalf("expected zero-score batch to be tolerated, got %v", err)
	}
	if len(passages) != 2 {
		t.Errorf("expected both passages kept, got %v", passages)
	}
}

func TestSearch_StopsAtTopKUnique(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{
		{Text: "a", Score: 9},
		{Text: "b", Score: 8},
		{Text: "a", Score: 7},
		{Text: "c", Score: 6},
		{Text: "d", Score: 5},
		{Text: "e", Score: 4},
		{Text: "f", Score: 3},
	}}
	p := NewPipeline(&stubEmbedder{}, index, happyGenerator(), DefaultConfig(), nil)

	passages, err := p.search(context.Background(), "ns", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if !reflect.DeepEqual(passages, want) {
		t.Errorf("expected first 5 unique passages %v, got %v", want, passages)
	}
}

func TestRerank_ReordersByLLMResponse(t *testing.T) {
	gen := happyGenerator()
	gen.rerankResponse = "[3,1,2]"
	p := NewPipeline(&stubEmbedder{}, &stubIndex{}, gen, DefaultConfig(), nil)

	ranked := p.rerank(context.Background(), "q", []string{"one", "two", "three"})
	want := []string{"three", "one", "two"}
	if !reflect.DeepEqual(ranked, want) {
		t.Errorf("expected %v, got %v", want, ranked)
	}
}

func TestRerank_FallsBackOnBadResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"service error", "", errors.New("llm down")},
		{"not json", "the best one is passage two", nil},
		{"wrong length", "[1]", nil},
		{"out of range", "[1,2,9]", nil},
		{"duplicate entry", "[1,1,2]", nil},
	}

	passages := []string{"one", "two", "three"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := happyGenerator()
			gen.rerankResponse = tt.response
			gen.rerankErr = tt.err
			p := NewPipeline(&stubEmbedder{}, &stubIndex{}, gen, DefaultConfig(), nil)

			ranked := p.rerank(context.Background(), "q", passages)
			if !reflect.DeepEqual(ranked, passages) {
				t.Errorf("expected similarity order kept, got %v", ranked)
			}
		})
	}
}

func TestRerank_WrappedJSONAccepted(t *testing.T) {
	gen := happyGenerator()
	gen.rerankResponse = "Here you go:\n```json\n[2,1]\n```"
	p := NewPipeline(&stubEmbedder{}, &stubIndex{}, gen, DefaultConfig(), nil)

	ranked := p.rerank(context.Background(), "q", []string{"one", "two"})
	want := []string{"two", "one"}
	if !reflect.DeepEqual(ranked, want) {
		t.Errorf("expected %v, got %v", want, ranked)
	}
}

func TestSynthesize_FailureReturnsEmpty(t *testing.T) {
	index := &stubIndex{matches: []domain.ScoredPassage{{Text: "p", Score: 1}}}
	gen := happyGenerator()
	gen.synthErr = errors.New("llm down")
	p := NewPipeline(&stubEmbedder{}, index, gen, DefaultConfig(), nil)

	result, err := p.Retrieve(context.Background(), "ns", "q")
	if err != nil {
		t.Fatalf("expected pipeline to survive synthesis failure, got %v", err)
	}
	if result.Answer != "" {
		t.Errorf("expected empty answer, got %q", result.Answer)
	}
}

func TestSynthesize_NoPassagesReturnsEmpty(t *testing.T) {
	index := &stubIndex{}
	gen := happyGenerator()
	p := NewPipeline(&stubEmbedder{}, index, gen, DefaultConfig(), nil)

	result, err := p.Retrieve(context.Background(), "ns", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "" {
		t.Errorf("expected empty answer with no passages, got %q", result.Answer)
	}
	// Only the refine prompt went out; nothing to rank or answer from.
	if len(gen.prompts) != 1 {
		t.Errorf("expected 1 prompt, got %d", len(gen.prompts))
	}
}
