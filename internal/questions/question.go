// Package questions provides read-only access to the question bank. The
// grading pipeline consumes one question's reference text per attempt and
// never writes back.
package questions

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound means no question with the requested id exists in the bank.
var ErrNotFound = errors.New("questions: not found")

// Question is one quiz item. Keywords are comma-separated display text and
// a transcription hint; they never participate in scoring.
type Question struct {
	ID        int    `json:"id"`
	Question  string `json:"question"`
	Reference string `json:"reference"`
	Keywords  string `json:"keywords"`
}

// KeywordList splits the comma-separated keywords for display.
func (q Question) KeywordList() []string {
	if strings.TrimSpace(q.Keywords) == "" {
		return nil
	}
	parts := strings.Split(q.Keywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Store is a read-only ordered collection of questions.
type Store interface {
	All(ctx context.Context) ([]Question, error)
	Get(ctx context.Context, id int) (Question, error)
	Random(ctx context.Context) (Question, error)
}

// Fallback is the single backup question served when no bank can be
// loaded, so the service still answers instead of crashing.
var Fallback = Question{
	ID:        0,
	Question:  "Sample Question: What is Biology?",
	Reference: "Biology is the study of life and living organisms.",
	Keywords:  "study, life, organisms",
}
