package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GoogleEmbedder produces embeddings via the Gemini embedding API.
type GoogleEmbedder struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleEmbedder creates a new Gemini embedding client.
func NewGoogleEmbedder(apiKey string) *GoogleEmbedder {
	return &GoogleEmbedder{
		apiKey:     apiKey,
		model:      "text-embedding-004",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
	}
}

type embedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type embedContentRequest struct {
	Model   string       `json:"model"`
	Content embedContent `json:"content"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embeddings []embedding `json:"embeddings"`
}

type embedding struct {
	Values []float32 `json:"values"`
}

// Embed returns one embedding vector per input text.
func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embedRequest{Requests: make([]embedContentRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedContentRequest{
			Model:   "models/" + e.model,
			Content: embedContent{Parts: []embedPart{{Text: text}}},
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", e.baseURL, e.model, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API error (%d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d texts", len(embedResp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range embedResp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
