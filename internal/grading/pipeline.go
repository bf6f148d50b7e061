package grading

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/oralquiz/grader/internal/audio"
	"github.com/oralquiz/grader/internal/registry"
	"github.com/oralquiz/grader/internal/stt"
)

// GradeRequest carries one captured answer and the reference to grade it
// against. Keywords are a transcription hint only; they never enter the
// score.
type GradeRequest struct {
	Sample    audio.Sample
	Reference string
	// ReferenceVector is an optional precomputed embedding of Reference
	// (warm-up worker output). It is used only when its dimension matches
	// the live embedder; anything stale falls back to embedding Reference.
	ReferenceVector  []float32
	ThresholdPercent float64
	Keywords         string // forwarded as the Whisper initial prompt
	Language         string
}

// Result is the outcome of one grading attempt. It is a value: produced
// once, never mutated, never persisted by the pipeline.
type Result struct {
	AttemptID    uuid.UUID `json:"attempt_id"`
	ScorePercent float64   `json:"score_percent"`
	Similarity   float64   `json:"similarity"`
	Passed       bool      `json:"passed"`
	Transcript   string    `json:"transcript"`
	Reference    string    `json:"reference"`
}

// Pipeline grades captured audio: transcribe, embed transcript and
// reference, score the pair. Any stage failure aborts the attempt and
// surfaces the originating error; there is no partial grading and no
// keyword-matching fallback.
type Pipeline struct {
	registry *registry.Registry
}

func NewPipeline(r *registry.Registry) *Pipeline {
	return &Pipeline{registry: r}
}

// Grade runs one attempt to completion. An empty transcript (silence, or
// speech the model could not understand) is a valid result that grades
// low, not an error.
func (p *Pipeline) Grade(ctx context.Context, req GradeRequest) (*Result, error) {
	transcriber, err := p.registry.Transcriber()
	if err != nil {
		return nil, err
	}
	embedder, err := p.registry.Embedder()
	if err != nil {
		return nil, err
	}

	tResp, err := transcriber.Transcribe(ctx, stt.TranscriptionRequest{
		Sample:   req.Sample,
		Language: req.Language,
		Prompt:   req.Keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe answer: %w", err)
	}
	transcript := tResp.Text

	// The embedding model is case-sensitive; the original grader compares
	// lowercased text, so match that.
	answerVec, err := embedder.EmbedSingle(ctx, strings.ToLower(transcript))
	if err != nil {
		return nil, fmt.Errorf("embed transcript: %w", err)
	}
	refVec := req.ReferenceVector
	if len(refVec) != embedder.Dimension() {
		refVec, err = embedder.EmbedSingle(ctx, strings.ToLower(req.Reference))
		if err != nil {
			return nil, fmt.Errorf("embed reference: %w", err)
		}
	}

	similarity := CosineSimilarity(answerVec, refVec)
	score, passed := Score(answerVec, refVec, req.ThresholdPercent)

	return &Result{
		AttemptID:    uuid.New(),
		ScorePercent: score,
		Similarity:   similarity,
		Passed:       passed,
		Transcript:   transcript,
		Reference:    req.Reference,
	}, nil
}
