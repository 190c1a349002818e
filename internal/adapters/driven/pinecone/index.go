package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Index implements driven.VectorIndex against the Pinecone data plane API.
// One project maps to one Pinecone namespace.
type Index struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

// Config holds Pinecone connection configuration
type Config struct {
	// Host is the index endpoint (e.g., https://my-index-abc123.svc.us-east-1.pinecone.io)
	Host string

	// APIKey authenticates data plane requests
	APIKey string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(host, apiKey string) Config {
	return Config{
		Host:    host,
		APIKey:  apiKey,
		Timeout: 30 * time.Second,
	}
}

// NewIndex creates a new Pinecone-backed VectorIndex
func NewIndex(cfg Config) *Index {
	return &Index{
		host:   strings.TrimSuffix(cfg.Host, "/"),
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// upsertRequest is the body for POST /vectors/upsert
type upsertRequest struct {
	Vectors   []pineconeVector `json:"vectors"`
	Namespace string           `json:"namespace"`
}

type pineconeVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// queryRequest is the body for POST /query
type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

// queryResponse is Pinecone's query response format
type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
	Namespace string `json:"namespace"`
}

// deleteRequest is the body for POST /vectors/delete
type deleteRequest struct {
	DeleteAll bool   `json:"deleteAll"`
	Namespace string `json:"namespace"`
}

// upsertBatchSize caps vectors per upsert request per Pinecone's API limits.
const upsertBatchSize = 100

// Upsert inserts or replaces records in the given namespace
func (p *Index) Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		vectors := make([]pineconeVector, 0, end-start)
		for _, r := range records[start:end] {
			vectors = append(vectors, pineconeVector{
				ID:       r.ID,
				Values:   r.Values,
				Metadata: r.Metadata,
			})
		}

		req := upsertRequest{Vectors: vectors, Namespace: namespace}
		if err := p.post(ctx, "/vectors/upsert", req, nil); err != nil {
			return fmt.Errorf("pinecone upsert failed: %w", err)
		}
	}

	return nil
}

// Query returns the topK nearest passages in the namespace
func (p *Index) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.ScoredPassage, error) {
	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       namespace,
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := p.post(ctx, "/query", req, &resp); err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	passages := make([]domain.ScoredPassage, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		passages = append(passages, domain.ScoredPassage{
			Text:  m.Metadata["text"],
			Score: m.Score,
		})
	}

	return passages, nil
}

// DeleteNamespace removes all records in a namespace
func (p *Index) DeleteNamespace(ctx context.Context, namespace string) error {
	req := deleteRequest{DeleteAll: true, Namespace: namespace}
	if err := p.post(ctx, "/vectors/delete", req, nil); err != nil {
		return fmt.Errorf("pinecone delete namespace failed: %w", err)
	}
	return nil
}

// HealthCheck verifies the index is available
func (p *Index) HealthCheck(ctx context.Context) error {
	if err := p.post(ctx, "/describe_index_stats", struct{}{}, nil); err != nil {
		return fmt.Errorf("pinecone health check failed: %w", err)
	}
	return nil
}

// post sends a JSON POST to the Pinecone data plane and optionally decodes the response
func (p *Index) post(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s - %s", resp.Status, string(raw))
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return err
		}
	}

	return nil
}
