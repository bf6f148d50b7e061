package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/oralquiz/grader/internal/api"
	"github.com/oralquiz/grader/internal/audio"
	"github.com/oralquiz/grader/internal/cache"
	"github.com/oralquiz/grader/internal/config"
	"github.com/oralquiz/grader/internal/database"
	"github.com/oralquiz/grader/internal/embedding"
	"github.com/oralquiz/grader/internal/grading"
	"github.com/oralquiz/grader/internal/questions"
	"github.com/oralquiz/grader/internal/queue"
	"github.com/oralquiz/grader/internal/registry"
	"github.com/oralquiz/grader/internal/stt"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database connection (optional — file-backed deployments skip it)
	var db *pgxpool.Pool
	if cfg.Database.URL != "" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without DB", "error", err)
			db = nil
		} else {
			defer db.Close()
			if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
				slog.Warn("migrations failed", "error", err)
			}
		}
	}

	// Redis connection (optional — without it embeddings are recomputed
	// per attempt)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var embedCache *cache.Cache
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
		rdb.Close()
		rdb = nil
	} else {
		defer rdb.Close()
		embedCache = cache.NewCache(rdb)
	}

	store := loadQuestions(cfg, db)

	// Model handles are built lazily on the first grading attempt.
	reg := registry.New(
		func() (stt.Transcriber, error) {
			return stt.FromConfig(cfg.STT), nil
		},
		func() (registry.Embedder, error) {
			return embedding.NewCachedService(embedding.FromConfig(cfg.Embedding), embedCache), nil
		},
	)

	recorder := audio.NewRecorder(audio.OpenDefaultDevice)
	svc := grading.NewService(recorder, grading.NewPipeline(reg))

	// Warm reference embeddings in the background when a broker is up.
	if rdb != nil {
		qc := queue.NewClient(cfg.Redis)
		if err := qc.EnqueueReferenceEmbed(queue.ReferenceEmbedPayload{}); err != nil {
			slog.Warn("failed to enqueue embedding warm-up", "error", err)
		}
		qc.Close()
	}

	router := api.NewRouter(db, rdb, cfg, svc, store)
	handler := router.Setup()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
		// Grading holds the connection open for the whole recording, so the
		// write timeout must cover the longest allowed attempt.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Grading.MaxDurationSec)*time.Second + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// loadQuestions picks the question bank. A bank that cannot be loaded
// degrades to the single fallback question rather than refusing to start.
func loadQuestions(cfg *config.Config, db *pgxpool.Pool) questions.Store {
	if cfg.Questions.Source == "postgres" && db != nil {
		return questions.NewPostgresStore(db)
	}
	store, err := questions.NewFileStore(cfg.Questions.FilePath)
	if err != nil {
		slog.Warn("question bank unavailable, serving fallback question", "error", err)
		return questions.NewStaticStore([]questions.Question{questions.Fallback})
	}
	return store
}
