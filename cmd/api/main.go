// Package main implements the StaffPilot API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/engine/embedding"
	"github.com/StaffPilotAI/staffpilot/engine/rag"
	"github.com/StaffPilotAI/staffpilot/engine/semantic"
	"github.com/StaffPilotAI/staffpilot/pkg/gemini"
	"github.com/StaffPilotAI/staffpilot/pkg/mid"
	"github.com/StaffPilotAI/staffpilot/pkg/resilience"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration.
type Config struct {
	Port          string
	QdrantURL     string
	Collection    string
	GeminiKey     string
	GeminiBaseURL string
	EmbedModel    string
	ChatModel     string
	EmbedDims     int
	TopK          int
	CORSOrigin    string
}

func loadConfig() Config {
	return Config{
		Port:          envOr("PORT", "8080"),
		QdrantURL:     envOr("QDRANT_URL", "localhost:6334"),
		Collection:    envOr("QDRANT_COLLECTION", "employee_embeddings"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		EmbedModel:    envOr("GEMINI_EMBED_MODEL", "gemini-embedding-001"),
		ChatModel:     envOr("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
		EmbedDims:     envIntOr("EMBED_DIMENSION", embedding.DefaultDimension),
		TopK:          envIntOr("TOP_K", 5),
		CORSOrigin:    envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// The index may be down at boot; searches surface that per request.
	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 10*time.Second)
	if err := vectorStore.EnsureCollection(ensureCtx, cfg.EmbedDims); err != nil {
		logger.Warn("collection not ready, continuing", "err", err)
	}
	cancelEnsure()

	// --- Build embedding generator ---
	var provider embedding.Provider
	if cfg.GeminiKey != "" {
		provider = gemini.NewEmbedClient(cfg.GeminiBaseURL, cfg.GeminiKey, cfg.EmbedModel)
		logger.Info("using Gemini embeddings", "model", cfg.EmbedModel, "dims", cfg.EmbedDims)
	} else {
		logger.Warn("GEMINI_API_KEY not set, using deterministic fallback embeddings")
	}
	embedder := embedding.New(provider, embedding.Options{
		Dimension: cfg.EmbedDims,
		Limiter:   resilience.NewLimiter(resilience.LimiterOpts{Rate: 10, Burst: 20}),
	}, logger)

	// --- Build RAG service ---
	var generator rag.Generator
	if cfg.GeminiKey != "" {
		generator = gemini.NewGenerateClient(cfg.GeminiBaseURL, cfg.GeminiKey, cfg.ChatModel)
		logger.Info("using Gemini generation", "model", cfg.ChatModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, answers degrade to retrieval only")
	}

	opts := rag.DefaultOptions()
	opts.TopK = cfg.TopK
	ragSvc := rag.New(embedder, vectorStore, generator, opts, logger)

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/index", handleIndexInfo(vectorStore))
	mux.HandleFunc("POST /api/chat", handleChat(ragSvc, logger))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("staffpilot-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleIndexInfo(store *semantic.VectorStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := store.Info(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "retrieval_unavailable", "vector index is unreachable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"points": info.PointsCount,
			"status": info.Status,
		})
	}
}

// ChatRequest is the JSON body for POST /api/chat.
type ChatRequest struct {
	Question string `json:"question"`
}

func handleChat(ragSvc *rag.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON with a question field")
			return
		}

		exchange, err := ragSvc.Answer(r.Context(), req.Question)
		if err != nil {
			status, code := classify(err)
			if status >= 500 {
				logger.Error("chat failed", "err", err)
			}
			writeError(w, status, code, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(exchange)
	}
}

// classify maps pipeline errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		return http.StatusBadRequest, "invalid_question"
	case errors.Is(err, domain.ErrRetrievalUnavailable):
		return http.StatusServiceUnavailable, "retrieval_unavailable"
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway, "generation_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
