package grading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oralquiz/grader/internal/audio"
)

type fakeRecorder struct {
	sample      audio.Sample
	err         error
	gotDuration time.Duration
	gotRate     int
}

func (f *fakeRecorder) Record(ctx context.Context, duration time.Duration, rate int) (audio.Sample, error) {
	f.gotDuration = duration
	f.gotRate = rate
	if f.err != nil {
		return audio.Sample{}, f.err
	}
	return f.sample, nil
}

func TestRecordAndGradeAppliesDefaults(t *testing.T) {
	rec := &fakeRecorder{sample: sample()}
	tr := &stubTranscriber{text: reference}
	svc := NewService(rec, newTestPipeline(tr, &stubEmbedder{vectors: semanticVectors}))

	res, err := svc.RecordAndGrade(context.Background(), AttemptRequest{Reference: reference})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.gotDuration != DefaultDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDuration, rec.gotDuration)
	}
	if rec.gotRate != DefaultSampleRate {
		t.Errorf("expected default rate %d, got %d", DefaultSampleRate, rec.gotRate)
	}
	if !res.Passed {
		t.Errorf("identical answer should pass the default threshold, score %f", res.ScorePercent)
	}
}

func TestRecordAndGradeHonorsZeroThreshold(t *testing.T) {
	rec := &fakeRecorder{sample: sample()}
	tr := &stubTranscriber{text: ""}
	svc := NewService(rec, newTestPipeline(tr, &stubEmbedder{vectors: semanticVectors}))

	zero := 0.0
	res, err := svc.RecordAndGrade(context.Background(), AttemptRequest{
		Reference:        reference,
		ThresholdPercent: &zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ScorePercent != 0 {
		t.Errorf("expected score 0 for a silent answer, got %f", res.ScorePercent)
	}
	if !res.Passed {
		t.Error("an explicit threshold of 0 must pass every attempt, not fall back to the default")
	}
}

func TestRecordAndGradeRequiresReference(t *testing.T) {
	svc := NewService(&fakeRecorder{}, newTestPipeline(&stubTranscriber{}, &stubEmbedder{}))

	if _, err := svc.RecordAndGrade(context.Background(), AttemptRequest{}); err == nil {
		t.Fatal("expected error for missing reference")
	}
}

func TestRecordAndGradeSurfacesCaptureError(t *testing.T) {
	rec := &fakeRecorder{err: audio.ErrDeviceBusy}
	svc := NewService(rec, newTestPipeline(&stubTranscriber{}, &stubEmbedder{}))

	_, err := svc.RecordAndGrade(context.Background(), AttemptRequest{Reference: reference})
	if !errors.Is(err, audio.ErrDeviceBusy) {
		t.Errorf("expected device error to surface verbatim, got %v", err)
	}
}
