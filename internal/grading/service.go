package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/oralquiz/grader/internal/audio"
)

// Defaults for the grading surface. The original grader records 10 seconds
// and passes at 65% similarity; Whisper models expect 16 kHz input.
const (
	DefaultDuration         = 10 * time.Second
	DefaultSampleRate       = 16000
	DefaultThresholdPercent = 65
)

// Recorder is the capture capability the service needs. *audio.Recorder
// satisfies it; tests use fakes.
type Recorder interface {
	Record(ctx context.Context, duration time.Duration, sampleRate int) (audio.Sample, error)
}

// AttemptRequest is the grading invocation surface consumed by the
// front-end: how long to record, at what rate, what to grade against, and
// how strict to be. Zero values take the defaults above, except the
// threshold: 0 is a real threshold every attempt passes, so "use the
// default" is expressed with nil.
type AttemptRequest struct {
	Duration         time.Duration
	SampleRate       int
	Reference        string
	ReferenceVector  []float32 // optional precomputed reference embedding
	Keywords         string
	Language         string
	ThresholdPercent *float64 // nil = DefaultThresholdPercent
}

// Service ties capture to the grading pipeline: record the answer, grade
// it, discard the audio.
type Service struct {
	recorder Recorder
	pipeline *Pipeline
}

func NewService(rec Recorder, p *Pipeline) *Service {
	return &Service{recorder: rec, pipeline: p}
}

// RecordAndGrade captures one answer and grades it. Capture and pipeline
// errors surface verbatim; a failed attempt never produces a score.
func (s *Service) RecordAndGrade(ctx context.Context, req AttemptRequest) (*Result, error) {
	if req.Reference == "" {
		return nil, fmt.Errorf("grading: reference text required")
	}
	if req.Duration == 0 {
		req.Duration = DefaultDuration
	}
	if req.SampleRate == 0 {
		req.SampleRate = DefaultSampleRate
	}
	threshold := float64(DefaultThresholdPercent)
	if req.ThresholdPercent != nil {
		threshold = *req.ThresholdPercent
	}

	sample, err := s.recorder.Record(ctx, req.Duration, req.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	return s.pipeline.Grade(ctx, GradeRequest{
		Sample:           sample,
		Reference:        req.Reference,
		ReferenceVector:  req.ReferenceVector,
		ThresholdPercent: threshold,
		Keywords:         req.Keywords,
		Language:         req.Language,
	})
}
