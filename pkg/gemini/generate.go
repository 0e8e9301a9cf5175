package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GenerateClient calls the Gemini generateContent endpoint with a single
// combined prompt. No conversation state is kept across calls.
type GenerateClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGenerateClient creates a Gemini generation client. An empty baseURL
// selects the public API endpoint.
func NewGenerateClient(baseURL, apiKey, model string) *GenerateClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GenerateClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateReq struct {
	Contents []generateContent `json:"contents"`
}

type generateResp struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate returns the model's text for the given prompt.
func (c *GenerateClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(generateReq{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("gemini generate: status %d", resp.StatusCode)
	}

	var result generateResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini generate decode: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: no candidates in response")
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty text in response")
	}
	return text, nil
}
