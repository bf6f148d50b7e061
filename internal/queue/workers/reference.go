package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/oralquiz/grader/internal/queue"
	"github.com/oralquiz/grader/internal/questions"
)

// Embedder is the slice of the embedding service the warm-up needs.
type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingWriter is implemented by question stores that can persist a
// precomputed reference embedding (the Postgres store). File-backed
// stores simply skip persistence and rely on the cache.
type EmbeddingWriter interface {
	SetReferenceEmbedding(ctx context.Context, id int, embedding []float32) error
}

// ReferenceWorker precomputes reference-answer embeddings so grading
// attempts hit a warm cache instead of the embedding backend.
type ReferenceWorker struct {
	store    questions.Store
	embedder Embedder
}

func NewReferenceWorker(store questions.Store, embedder Embedder) *ReferenceWorker {
	return &ReferenceWorker{store: store, embedder: embedder}
}

func (w *ReferenceWorker) HandleReferenceEmbed(ctx context.Context, task *asynq.Task) error {
	var payload queue.ReferenceEmbedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var batch []questions.Question
	if payload.QuestionID > 0 {
		q, err := w.store.Get(ctx, payload.QuestionID)
		if err != nil {
			return fmt.Errorf("load question %d: %w", payload.QuestionID, err)
		}
		batch = []questions.Question{q}
	} else {
		all, err := w.store.All(ctx)
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}
		batch = all
	}

	writer, persist := w.store.(EmbeddingWriter)

	for _, q := range batch {
		vec, err := w.embedder.EmbedSingle(ctx, strings.ToLower(q.Reference))
		if err != nil {
			return fmt.Errorf("embed reference for question %d: %w", q.ID, err)
		}
		if persist {
			if err := writer.SetReferenceEmbedding(ctx, q.ID, vec); err != nil {
				return fmt.Errorf("persist embedding for question %d: %w", q.ID, err)
			}
		}
		slog.Info("warmed reference embedding", "question_id", q.ID, "persisted", persist)
	}

	return nil
}
