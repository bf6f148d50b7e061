package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
)

// FileStore serves questions from a JSON file loaded once at startup.
type FileStore struct {
	questions []Question
	byID      map[int]Question
}

// NewFileStore loads the bank from path.
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", path, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question bank %s is empty", path)
	}

	return NewStaticStore(qs), nil
}

// NewStaticStore serves a fixed in-memory bank.
func NewStaticStore(qs []Question) *FileStore {
	byID := make(map[int]Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}
	return &FileStore{questions: qs, byID: byID}
}

func (s *FileStore) All(ctx context.Context) ([]Question, error) {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, id int) (Question, error) {
	q, ok := s.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return q, nil
}

func (s *FileStore) Random(ctx context.Context) (Question, error) {
	return s.questions[rand.N(len(s.questions))], nil
}
