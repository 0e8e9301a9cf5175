package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-embedding-001:embedContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		var req embedReq
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Content.Parts) != 1 || req.Content.Parts[0].Text != "hello" {
			t.Errorf("request body = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float64{0.1, 0.2, 0.3}},
		})
	}))
	defer ts.Close()

	c := NewEmbedClient(ts.URL, "test-key", "gemini-embedding-001")
	vec, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("vec = %v", vec)
	}
}

func TestEmbed_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewEmbedClient(ts.URL, "k", "m")
	if _, err := c.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbed_EmptyEmbedding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": map[string]any{"values": []float64{}}})
	}))
	defer ts.Close()

	c := NewEmbedClient(ts.URL, "k", "m")
	if _, err := c.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("empty embedding must be rejected")
	}
}

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req generateReq
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) != 1 || !strings.Contains(req.Contents[0].Parts[0].Text, "prompt text") {
			t.Errorf("request body = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "an answer"}}}},
			},
		})
	}))
	defer ts.Close()

	c := NewGenerateClient(ts.URL, "test-key", "gemini-2.0-flash")
	got, err := c.Generate(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "an answer" {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer ts.Close()

	c := NewGenerateClient(ts.URL, "k", "m")
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerate_EmptyText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": ""}}}},
			},
		})
	}))
	defer ts.Close()

	c := NewGenerateClient(ts.URL, "k", "m")
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("empty text must be rejected")
	}
}

func TestDefaultBaseURL(t *testing.T) {
	c := NewEmbedClient("", "k", "m")
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	g := NewGenerateClient("", "k", "m")
	if g.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", g.baseURL)
	}
}
