// Package indexer keeps the vector collection up to date with the employee
// directory. It reads records from the store, serializes each to its
// canonical retrieval text, embeds, and upserts in fixed-size batches. One
// bad record never aborts a batch, and one bad batch never aborts the run.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/engine/semantic"
	"github.com/StaffPilotAI/staffpilot/pkg/fn"
	"github.com/google/uuid"
)

// DefaultBatchSize bounds peak memory and respects upstream batch limits.
const DefaultBatchSize = 10

// upsertRetry keeps batch writes short-fused: transient index hiccups get a
// couple of quick retries before the batch is counted as failed.
var upsertRetry = fn.RetryOpts{
	MaxAttempts: 3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Jitter:      true,
}

// Source yields the records to index.
type Source interface {
	List(ctx context.Context) ([]domain.Employee, error)
}

// Embedder produces a vector for retrieval text. Total: it never fails.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// VectorWriter is the slice of the vector store the indexer needs.
type VectorWriter interface {
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
	Info(ctx context.Context) (semantic.CollectionInfo, error)
}

// Deps holds the external dependencies for indexing.
type Deps struct {
	Source   Source
	Embedder Embedder
	Store    VectorWriter
	Logger   *slog.Logger
}

// Options configures the indexing run.
type Options struct {
	BatchSize int
}

// Report summarizes an indexing run.
type Report struct {
	Indexed int    `json:"indexed"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Points  uint64 `json:"points"`
}

// Indexer runs bulk and single-record indexing.
type Indexer struct {
	deps Deps
	opts Options
}

// New creates an Indexer.
func New(deps Deps, opts Options) *Indexer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Indexer{deps: deps, opts: opts}
}

// PointID derives the deterministic point identifier for an employee.
// Re-indexing the same record always targets the same point, so indexing is
// idempotent.
func PointID(employeeID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("staffpilot:employee:"+employeeID)).String()
}

// Run indexes every record from the source. Invalid records are logged and
// skipped; a failed batch upsert is logged and the run continues. The run
// errors only when records existed but none could be indexed.
func (ix *Indexer) Run(ctx context.Context) (Report, error) {
	log := ix.deps.Logger

	listed, err := ix.deps.Source.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("indexer: list records: %w", err)
	}

	// Duplicate ids map to the same point; keep the first occurrence so a
	// batch never upserts one point twice.
	employees := fn.UniqueBy(listed, func(e domain.Employee) string { return e.ID })
	if dropped := len(listed) - len(employees); dropped > 0 {
		log.Warn("indexer: dropped duplicate record ids", "count", dropped)
	}
	log.Info("indexer: run start", "records", len(employees), "batch_size", ix.opts.BatchSize)

	var report Report
	for _, batch := range fn.Chunk(employees, ix.opts.BatchSize) {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		valid := fn.Filter(batch, func(e domain.Employee) bool {
			if err := domain.ValidateEmployee(e); err != nil {
				log.Warn("indexer: skipping record", "id", e.ID, "error", err)
				report.Skipped++
				return false
			}
			return true
		})
		records := fn.Map(valid, func(e domain.Employee) semantic.VectorRecord {
			return semantic.VectorRecord{
				ID:        PointID(e.ID),
				Embedding: ix.deps.Embedder.Embed(ctx, e.RetrievalText()),
				Payload:   e.Payload(),
			}
		})
		if len(records) == 0 {
			continue
		}

		result := fn.Retry(ctx, upsertRetry, func(ctx context.Context) fn.Result[int] {
			return fn.FromPair(len(records), ix.deps.Store.Upsert(ctx, records))
		})
		if n, err := result.Unwrap(); err != nil {
			log.Error("indexer: batch upsert failed", "size", len(records), "error", err)
			report.Failed += len(records)
		} else {
			report.Indexed += n
		}
	}

	if len(employees) > 0 && report.Indexed == 0 {
		return report, fmt.Errorf("indexer: %w", domain.ErrNothingIndexed)
	}

	// Collection diagnostics are best-effort operator visibility.
	if info, err := ix.deps.Store.Info(ctx); err != nil {
		log.Warn("indexer: collection info unavailable", "error", err)
	} else {
		report.Points = info.PointsCount
	}

	log.Info("indexer: run done",
		"indexed", report.Indexed, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// --- single-record pipeline stages ---

func (ix *Indexer) validateStage() fn.Stage[domain.Employee, domain.Employee] {
	return func(_ context.Context, e domain.Employee) fn.Result[domain.Employee] {
		if err := domain.ValidateEmployee(e); err != nil {
			return fn.Err[domain.Employee](err)
		}
		return fn.Ok(e)
	}
}

func (ix *Indexer) embedStage() fn.Stage[domain.Employee, semantic.VectorRecord] {
	return func(ctx context.Context, e domain.Employee) fn.Result[semantic.VectorRecord] {
		return fn.Ok(semantic.VectorRecord{
			ID:        PointID(e.ID),
			Embedding: ix.deps.Embedder.Embed(ctx, e.RetrievalText()),
			Payload:   e.Payload(),
		})
	}
}

func (ix *Indexer) storeStage() fn.Stage[semantic.VectorRecord, string] {
	return func(ctx context.Context, rec semantic.VectorRecord) fn.Result[string] {
		if err := ix.deps.Store.Upsert(ctx, []semantic.VectorRecord{rec}); err != nil {
			return fn.Errf[string]("indexer: upsert %s: %w", rec.ID, err)
		}
		return fn.Ok(rec.ID)
	}
}

// IndexOne runs a single record through validate, embed, store.
func (ix *Indexer) IndexOne(ctx context.Context, e domain.Employee) error {
	pipeline := fn.Then(
		fn.Then(
			fn.TracedStage("index.validate", ix.validateStage()),
			fn.TracedStage("index.embed", ix.embedStage()),
		),
		fn.Then(
			fn.TracedStage("index.store", ix.storeStage()),
			fn.TapStage(func(_ context.Context, id string) {
				ix.deps.Logger.Debug("indexer: point stored", "point", id)
			}),
		),
	)
	_, err := pipeline(ctx, e).Unwrap()
	return err
}
