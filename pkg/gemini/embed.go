// Package gemini provides narrow HTTP clients for the Gemini embedding and
// generation endpoints. Each client exposes exactly one validated call; the
// raw API response shape never leaks past this package.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultBaseURL is the Gemini REST API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// EmbedClient calls the Gemini embedContent endpoint.
type EmbedClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewEmbedClient creates a Gemini embedding client. An empty baseURL selects
// the public API endpoint.
func NewEmbedClient(baseURL, apiKey, model string) *EmbedClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &EmbedClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

type embedPart struct {
	Text string `json:"text"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedReq struct {
	Content embedContent `json:"content"`
}

type embedResp struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for the given text.
func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(embedReq{Content: embedContent{Parts: []embedPart{{Text: text}}}})

	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("gemini embed: status %d", resp.StatusCode)
	}

	var result embedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gemini embed decode: %w", err)
	}
	if len(result.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty embedding in response")
	}

	out := make([]float32, len(result.Embedding.Values))
	for i, v := range result.Embedding.Values {
		out[i] = float32(v)
	}
	return out, nil
}
