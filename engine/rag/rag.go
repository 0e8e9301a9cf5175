// Package rag orchestrates the retrieval-augmented answer pipeline. It
// accepts a question, embeds it, searches the employee collection for the
// most relevant records, formats them into a grounding context, and calls
// the generation backend for the final answer. When no generation backend
// is configured it still returns the retrieved sources with a fixed
// explanatory answer; that is a supported degraded mode, not an error.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/engine/semantic"
	"github.com/StaffPilotAI/staffpilot/pkg/resilience"
)

// Embedder produces a query vector. Total: it never fails.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Searcher abstracts top-K vector search.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]semantic.SearchResult, error)
}

// Generator abstracts the generation backend. A nil Generator means the
// backend is not configured.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures the pipeline behaviour.
type Options struct {
	TopK            int
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		TopK:            5,
		SearchTimeout:   5 * time.Second,
		GenerateTimeout: 30 * time.Second,
	}
}

// NotConfiguredAnswer is returned when no generation backend is configured.
// Retrieval still succeeds; only synthesis is disabled.
const NotConfiguredAnswer = "LLM service is not configured. Please set GEMINI_API_KEY environment variable."

const instruction = `You are a helpful HR assistant. Answer the user's question using ONLY the context provided below. If the answer is not in the context, explicitly state that you do not have that information. Do not make up facts.`

// recordSeparator visually segments per-record evidence for the model.
const recordSeparator = "\n\n---\n\n"

// SourceRecord is one retrieved employee record backing the answer. Optional
// fields are absent when the stored payload does not contain them.
type SourceRecord struct {
	Name       string   `json:"name"`
	Position   string   `json:"position"`
	Department string   `json:"department"`
	Email      string   `json:"email,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Bio        string   `json:"bio,omitempty"`
}

// Exchange is the structured response: the answer plus the ordered source
// records actually used for grounding. Constructed per request, never
// persisted.
type Exchange struct {
	Answer  string         `json:"answer"`
	Sources []SourceRecord `json:"source_docs"`
}

// Service is the retrieval orchestrator.
type Service struct {
	embed    Embedder
	search   Searcher
	generate Generator
	breaker  *resilience.Breaker
	opts     Options
	logger   *slog.Logger
}

// New creates a Service. generate may be nil when no backend is configured.
func New(embed Embedder, search Searcher, generate Generator, opts Options, logger *slog.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = DefaultOptions().SearchTimeout
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultOptions().GenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embed:    embed,
		search:   search,
		generate: generate,
		breaker:  resilience.NewBreaker(resilience.DefaultBreakerOpts),
		opts:     opts,
		logger:   logger,
	}
}

// Answer runs the full pipeline for one question. It fails only on invalid
// input, an unreachable index, or a generation backend error; embedding
// degradation is handled internally.
func (s *Service) Answer(ctx context.Context, question string) (*Exchange, error) {
	q, err := domain.ValidateQuestion(question)
	if err != nil {
		return nil, err
	}
	s.logger.Info("rag: query start", "question_len", len(q))

	vector := s.embed.Embed(ctx, q)

	searchCtx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()

	results, err := s.search.Search(searchCtx, vector, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("rag: search: %w: %v", domain.ErrRetrievalUnavailable, err)
	}
	s.logger.Info("rag: search done", "results", len(results))

	sources := make([]SourceRecord, len(results))
	contextParts := make([]string, len(results))
	for i, r := range results {
		rec := sourceRecordFromPayload(r.Payload)
		sources[i] = rec
		contextParts[i] = formatRecord(rec)
	}
	contextBlock := strings.Join(contextParts, recordSeparator)

	if s.generate == nil {
		return &Exchange{Answer: NotConfiguredAnswer, Sources: sources}, nil
	}

	genCtx, cancelGen := context.WithTimeout(ctx, s.opts.GenerateTimeout)
	defer cancelGen()

	var answer string
	err = s.breaker.Call(genCtx, func(ctx context.Context) error {
		var genErr error
		answer, genErr = s.generate.Generate(ctx, buildPrompt(q, contextBlock))
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("rag: generate: %w: %v", domain.ErrGenerationFailed, err)
	}

	return &Exchange{Answer: answer, Sources: sources}, nil
}

// sourceRecordFromPayload extracts the displayable attributes from a stored
// payload. Unknown or missing optional fields stay absent; they are never
// defaulted to a sentinel that could be mistaken for data.
func sourceRecordFromPayload(payload map[string]any) SourceRecord {
	rec := SourceRecord{}
	if v, ok := payload["name"].(string); ok {
		rec.Name = v
	}
	if v, ok := payload["position"].(string); ok {
		rec.Position = v
	}
	if v, ok := payload["department"].(string); ok {
		rec.Department = v
	}
	if v, ok := payload["email"].(string); ok {
		rec.Email = v
	}
	if v, ok := payload["skills"].([]string); ok && len(v) > 0 {
		rec.Skills = v
	}
	if v, ok := payload["bio"].(string); ok {
		rec.Bio = v
	}
	return rec
}

// formatRecord renders one context paragraph with one "Key: value" line per
// present field, in fixed order.
func formatRecord(rec SourceRecord) string {
	lines := make([]string, 0, 6)
	if rec.Name != "" {
		lines = append(lines, "Name: "+rec.Name)
	}
	if rec.Position != "" {
		lines = append(lines, "Position: "+rec.Position)
	}
	if rec.Department != "" {
		lines = append(lines, "Department: "+rec.Department)
	}
	if rec.Email != "" {
		lines = append(lines, "Email: "+rec.Email)
	}
	if len(rec.Skills) > 0 {
		lines = append(lines, "Skills: "+strings.Join(rec.Skills, ", "))
	}
	if rec.Bio != "" {
		lines = append(lines, "Bio: "+rec.Bio)
	}
	return strings.Join(lines, "\n")
}

// buildPrompt combines the instruction, the grounding context, and the
// question into the single-turn prompt sent to the generation backend.
func buildPrompt(question, contextBlock string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContext:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
