package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GoogleClient implements the Client interface for Google Gemini
type GoogleClient struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	baseURL     string
}

// NewGoogleClient creates a new Google Gemini client
func NewGoogleClient(opts Options) *GoogleClient {
	return &GoogleClient{
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
	}
}

// Google API request/response types
type googleRequest struct {
	Contents          []googleContent        `json:"contents"`
	SystemInstruction *googleContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  googleGenerationConfig `json:"generationConfig"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type googleResponse struct {
	Candidates []googleCandidate `json:"candidates"`
}

type googleCandidate struct {
	Content googleContent `json:"content"`
}

// Complete sends a request to Google Gemini
func (c *GoogleClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := googleRequest{
		Contents: []googleContent{
			{Role: "user", Parts: []googlePart{{Text: userPrompt}}},
		},
		GenerationConfig: googleGenerationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &googleContent{Parts: []googlePart{{Text: systemPrompt}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError("google", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("google", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apiError("google", resp.StatusCode, body)
	}

	var googleResp googleResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(googleResp.Candidates) == 0 || len(googleResp.Candidates[0].Content.Parts) == 0 {
		return "", &ModelError{Provider: "google", Message: "empty response from model", Retryable: true}
	}

	return googleResp.Candidates[0].Content.Parts[0].Text, nil
}
