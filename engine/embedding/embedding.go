// Package embedding turns text into fixed-dimension unit vectors. It wraps
// an external embedding provider with a deterministic local fallback so that
// Embed is a total function: callers always receive a usable vector, and
// provider outages degrade to log noise instead of pipeline failures.
package embedding

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/StaffPilotAI/staffpilot/pkg/resilience"
)

// DefaultDimension matches the gemini-embedding-001 output size.
const DefaultDimension = 3072

// Provider is the external embedding service boundary.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options configures the generator.
type Options struct {
	// Dimension is the vector size for this deployment. It must match the
	// collection's configured dimension; the fallback produces the same size
	// so fallback and provider vectors are interchangeable.
	Dimension int
	// Timeout bounds each provider call.
	Timeout time.Duration
	// Limiter optionally rate-limits provider calls.
	Limiter *resilience.Limiter
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Dimension: DefaultDimension,
		Timeout:   10 * time.Second,
	}
}

// Generator produces embeddings with graceful provider degradation.
type Generator struct {
	provider Provider
	opts     Options
	logger   *slog.Logger
}

// New creates a Generator. A nil provider means fallback-only operation.
func New(provider Provider, opts Options, logger *slog.Logger) *Generator {
	if opts.Dimension <= 0 {
		opts.Dimension = DefaultDimension
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, opts: opts, logger: logger}
}

// Dimension returns the configured vector size.
func (g *Generator) Dimension() int { return g.opts.Dimension }

// Embed returns a vector for the text. It never fails: provider errors and
// malformed responses are logged as degradation events and replaced with the
// deterministic fallback vector.
func (g *Generator) Embed(ctx context.Context, text string) []float32 {
	if g.provider == nil {
		return Fallback(text, g.opts.Dimension)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	if g.opts.Limiter != nil {
		if err := g.opts.Limiter.Wait(callCtx); err != nil {
			g.logger.Warn("embedding: rate limit wait failed, using fallback", "error", err)
			return Fallback(text, g.opts.Dimension)
		}
	}

	vec, err := g.provider.Embed(callCtx, text)
	if err != nil {
		g.logger.Warn("embedding: provider call failed, using fallback", "error", err)
		return Fallback(text, g.opts.Dimension)
	}
	if len(vec) != g.opts.Dimension {
		g.logger.Warn("embedding: provider returned wrong dimension, using fallback",
			"got", len(vec), "want", g.opts.Dimension)
		return Fallback(text, g.opts.Dimension)
	}
	return vec
}

// Fallback generates a deterministic unit vector from the text alone. The
// same text always yields the same vector, so indexing and querying stay
// consistent while the provider is down. It is a continuity mechanism, not a
// semantic one: no similarity quality is implied.
func Fallback(text string, dims int) []float32 {
	seed := textSeed(text)

	vec := make([]float32, dims)
	var sumSquares float64
	for i := range vec {
		x := math.Sin(float64(seed)+float64(i)) * 10000
		f := x - math.Floor(x)
		vec[i] = float32(f)
		sumSquares += f * f
	}

	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// textSeed folds the text's code points into a 32-bit signed accumulator
// (polynomial rolling hash, base 31) and returns its absolute value.
func textSeed(text string) int32 {
	var h int32
	for _, r := range text {
		h = h*31 + int32(r)
	}
	if h < 0 {
		if h == math.MinInt32 {
			return math.MaxInt32
		}
		return -h
	}
	return h
}
