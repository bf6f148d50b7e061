package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore serves questions from a Postgres table. The table also
// carries a precomputed reference embedding per question (pgvector column)
// so the warm-up worker can take the first-attempt embedding cost off the
// grading path.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) All(ctx context.Context) ([]Question, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, question, reference, keywords FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Question, &q.Reference, &q.Keywords); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id int) (Question, error) {
	var q Question
	err := s.db.QueryRow(ctx,
		`SELECT id, question, reference, keywords FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Question, &q.Reference, &q.Keywords)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return Question{}, fmt.Errorf("get question %d: %w", id, err)
	}
	return q, nil
}

func (s *PostgresStore) Random(ctx context.Context) (Question, error) {
	var q Question
	err := s.db.QueryRow(ctx,
		`SELECT id, question, reference, keywords FROM questions ORDER BY random() LIMIT 1`,
	).Scan(&q.ID, &q.Question, &q.Reference, &q.Keywords)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, fmt.Errorf("%w: bank is empty", ErrNotFound)
	}
	if err != nil {
		return Question{}, fmt.Errorf("random question: %w", err)
	}
	return q, nil
}

// ReferenceEmbedding returns the precomputed embedding for a question, or
// ErrNotFound when none has been stored yet.
func (s *PostgresStore) ReferenceEmbedding(ctx context.Context, id int) ([]float32, error) {
	var vec *pgvector.Vector
	err := s.db.QueryRow(ctx,
		`SELECT reference_embedding FROM questions WHERE id = $1`, id,
	).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && vec == nil) {
		return nil, fmt.Errorf("%w: embedding for id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get reference embedding %d: %w", id, err)
	}
	return vec.Slice(), nil
}

// SetReferenceEmbedding stores the precomputed embedding for a question.
// Called by the warm-up worker, never by the grading pipeline.
func (s *PostgresStore) SetReferenceEmbedding(ctx context.Context, id int, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	tag, err := s.db.Exec(ctx,
		`UPDATE questions SET reference_embedding = $1 WHERE id = $2`, vec, id)
	if err != nil {
		return fmt.Errorf("set reference embedding %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
