// Command indexer reads every employee record from the directory, embeds its
// retrieval text, and upserts the vectors into Qdrant in batches. With -watch
// it additionally stays up and re-indexes records published on NATS.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/StaffPilotAI/staffpilot/engine/directory"
	"github.com/StaffPilotAI/staffpilot/engine/embedding"
	"github.com/StaffPilotAI/staffpilot/engine/indexer"
	"github.com/StaffPilotAI/staffpilot/engine/semantic"
	"github.com/StaffPilotAI/staffpilot/pkg/gemini"
	"github.com/StaffPilotAI/staffpilot/pkg/metrics"
	"github.com/StaffPilotAI/staffpilot/pkg/resilience"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var met = metrics.New()

var (
	mIndexed = met.Counter("staffpilot_index_records_total", "Records indexed")
	mSkipped = met.Counter("staffpilot_index_skipped_total", "Records skipped as invalid")
	mFailed  = met.Counter("staffpilot_index_failed_total", "Records that failed to upsert")
	mPoints  = met.Gauge("staffpilot_index_points", "Points in the collection after the run")
	mRunDur  = met.Histogram("staffpilot_index_run_duration_seconds", "Full run time", nil)
)

func main() {
	var (
		neo4jURL    = flag.String("neo4j", "neo4j://localhost:7687", "Neo4j bolt URL")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "password", "Neo4j password")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "employee_embeddings", "Qdrant collection name")
		dims        = flag.Int("dimension", embedding.DefaultDimension, "embedding vector dimension")
		batchSize   = flag.Int("batch", indexer.DefaultBatchSize, "upsert batch size")
		embedModel  = flag.String("embed-model", "gemini-embedding-001", "Gemini embedding model")
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS URL for -watch mode")
		watch       = flag.Bool("watch", false, "keep running and re-index records published on NATS")
		reset       = flag.Bool("reset", false, "delete and recreate the collection before indexing")
		metricsPort = flag.Int("metrics-port", 9091, "Prometheus metrics port")
	)
	flag.Parse()
	godotenv.Load()

	met.ServeAsync(*metricsPort)

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Connect Neo4j
	driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
	if err != nil {
		log.Error("neo4j connect failed", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Error("neo4j verify failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Neo4j")

	// Connect Qdrant
	vs, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer vs.Close()

	if *reset {
		if err := vs.DeleteCollection(ctx); err != nil {
			log.Warn("collection delete failed", "error", err)
		} else {
			log.Info("collection deleted", "collection", *collection)
		}
	}
	if err := vs.EnsureCollection(ctx, *dims); err != nil {
		log.Error("qdrant ensure collection failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Qdrant", "collection", *collection, "dims", *dims)

	// Embedding generator with Gemini when a key is present
	var provider embedding.Provider
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		provider = gemini.NewEmbedClient(os.Getenv("GEMINI_BASE_URL"), key, *embedModel)
		log.Info("using Gemini embeddings", "model", *embedModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, using deterministic fallback embeddings")
	}
	embedder := embedding.New(provider, embedding.Options{
		Dimension: *dims,
		Limiter:   resilience.NewLimiter(resilience.LimiterOpts{Rate: 5, Burst: 10}),
	}, log)

	ix := indexer.New(indexer.Deps{
		Source:   directory.New(driver),
		Embedder: embedder,
		Store:    vs,
		Logger:   log,
	}, indexer.Options{BatchSize: *batchSize})

	start := time.Now()
	report, err := ix.Run(ctx)
	mRunDur.Since(start)
	mIndexed.Add(int64(report.Indexed))
	mSkipped.Add(int64(report.Skipped))
	mFailed.Add(int64(report.Failed))
	mPoints.Set(int64(report.Points))
	if err != nil {
		log.Error("indexing run failed", "error", err)
		os.Exit(1)
	}

	out, _ := json.Marshal(report)
	os.Stdout.Write(append(out, '\n'))

	if !*watch {
		return
	}

	// Watch mode: stay up and re-index records as they change.
	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Error("nats connect failed", "error", err)
		os.Exit(1)
	}
	defer nc.Drain()

	sub, err := indexer.StartConsumer(nc, ix, log)
	if err != nil {
		log.Error("consumer start failed", "error", err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	log.Info("watching for record updates", "subject", indexer.ReindexSubject)
	<-ctx.Done()
	log.Info("shutdown signal received")
}
