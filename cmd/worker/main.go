package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/oralquiz/grader/internal/cache"
	"github.com/oralquiz/grader/internal/config"
	"github.com/oralquiz/grader/internal/database"
	"github.com/oralquiz/grader/internal/embedding"
	"github.com/oralquiz/grader/internal/questions"
	"github.com/oralquiz/grader/internal/queue"
	"github.com/oralquiz/grader/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// The worker shares the API's broker; its Redis also backs the
	// embedding cache the warm-up fills.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var db *pgxpool.Pool
	if cfg.Questions.Source == "postgres" && cfg.Database.URL != "" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var store questions.Store
	if db != nil {
		store = questions.NewPostgresStore(db)
	} else {
		fs, err := questions.NewFileStore(cfg.Questions.FilePath)
		if err != nil {
			slog.Error("failed to load question bank", "error", err)
			os.Exit(1)
		}
		store = fs
	}

	embedder := embedding.NewCachedService(
		embedding.FromConfig(cfg.Embedding),
		cache.NewCache(rdb),
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Warm-ups hit the same embedding backend the grading path
			// uses; keep concurrency low so attempts stay responsive.
			Concurrency: 2,
		},
	)

	mux := asynq.NewServeMux()
	refWorker := workers.NewReferenceWorker(store, embedder)
	mux.HandleFunc(queue.TypeReferenceEmbed, refWorker.HandleReferenceEmbed)

	slog.Info("starting worker", "concurrency", 2)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
