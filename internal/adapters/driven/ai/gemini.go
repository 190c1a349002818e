package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Ensure interface compliance
var (
	_ driven.EmbeddingService  = (*GeminiEmbedding)(nil)
	_ driven.GenerativeService = (*GeminiGenerative)(nil)
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Model dimensions for Gemini embedding models
var geminiModelDimensions = map[string]int{
	"text-embedding-004": 768,
	"embedding-001":      768,
}

// GeminiEmbedding implements EmbeddingService using the Gemini embedding API
type GeminiEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewGeminiEmbedding creates a new Gemini embedding service
func NewGeminiEmbedding(apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	if model == "" {
		model = "text-embedding-004"
	}

	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	dimensions, ok := geminiModelDimensions[model]
	if !ok {
		dimensions = 768
	}

	return &GeminiEmbedding{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// geminiPart is a single text part in a Gemini content block
type geminiPart struct {
	Text string `json:"text"`
}

// geminiContent is a content block in a Gemini request or response
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

// batchEmbedRequest is the request body for batchEmbedContents
type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type embedContentRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

// batchEmbedResponse is the response from batchEmbedContents
type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Embed generates embeddings for multiple texts
func (e *GeminiEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := batchEmbedRequest{
		Requests: make([]embedContentRequest, 0, len(texts)),
	}
	for _, text := range texts {
		reqBody.Requests = append(reqBody.Requests, embedContentRequest{
			Model:   "models/" + e.model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		})
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", e.baseURL, e.model)

	var embResp batchEmbedResponse
	if err := e.doRequest(ctx, url, reqBody, &embResp); err != nil {
		return nil, err
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (status: %s, code: %d)",
			embResp.Error.Message, embResp.Error.Status, embResp.Error.Code)
	}

	if len(embResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Gemini returned %d embeddings for %d texts",
			len(embResp.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range embResp.Embeddings {
		embeddings[i] = emb.Values
	}

	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *GeminiEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *GeminiEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *GeminiEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *GeminiEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *GeminiEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// doRequest makes a POST request to the Gemini API and decodes the response
func (e *GeminiEmbedding) doRequest(ctx context.Context, url string, reqBody, respBody any) error {
	return geminiPost(ctx, e.client, url, e.apiKey, reqBody, respBody)
}

// GeminiGenerative implements GenerativeService using the Gemini generateContent API
type GeminiGenerative struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiGenerative creates a new Gemini generative service
func NewGeminiGenerative(apiKey, model, baseURL string) (driven.GenerativeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	if model == "" {
		model = "gemini-1.5-flash"
	}

	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiGenerative{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// generateRequest is the request body for generateContent
type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

// generateResponse is the response from generateContent
type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

// Generate produces a completion for the given prompt
func (g *GeminiGenerative) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)

	var genResp generateResponse
	if err := geminiPost(ctx, g.client, url, g.apiKey, reqBody, &genResp); err != nil {
		return "", err
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("Gemini API error: %s (status: %s, code: %d)",
			genResp.Error.Message, genResp.Error.Status, genResp.Error.Code)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var out bytes.Buffer
	for _, part := range genResp.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}

// Model returns the model name being used
func (g *GeminiGenerative) Model() string {
	return g.model
}

// Ping verifies the generative service is available
func (g *GeminiGenerative) Ping(ctx context.Context) error {
	_, err := g.Generate(ctx, "Reply with the single word: ok")
	return err
}

// Close releases resources held by the generative service
func (g *GeminiGenerative) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// geminiPost sends a JSON POST to the Gemini API with key auth
func geminiPost(ctx context.Context, client *http.Client, url, apiKey string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(raw, respBody); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	// API errors carry a JSON error payload alongside a non-200 status. The
	// payload is decoded above so callers can surface the message.
	if resp.StatusCode != http.StatusOK && !hasGeminiError(respBody) {
		return fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	return nil
}

func hasGeminiError(respBody any) bool {
	switch r := respBody.(type) {
	case *batchEmbedResponse:
		return r.Error != nil
	case *generateResponse:
		return r.Error != nil
	default:
		return false
	}
}
