package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oralquiz/grader/internal/audio"
	"github.com/oralquiz/grader/internal/config"
	"github.com/oralquiz/grader/internal/grading"
	"github.com/oralquiz/grader/internal/questions"
	"github.com/oralquiz/grader/internal/registry"
	"github.com/oralquiz/grader/internal/stt"
)

type fakeRecorder struct {
	err error
}

func (f *fakeRecorder) Record(ctx context.Context, duration time.Duration, sampleRate int) (audio.Sample, error) {
	if f.err != nil {
		return audio.Sample{}, f.err
	}
	return audio.Sample{Data: make([]float32, sampleRate), Rate: sampleRate}, nil
}

type fakeTranscriber struct {
	text string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	return &stt.TranscriptionResponse{Text: f.text}, nil
}

func (f *fakeTranscriber) Name() string { return "fake" }

type fakeEmbedder struct{}

// EmbedSingle maps any non-blank text onto the same unit vector, so a
// non-empty transcript always scores 100 against a non-empty reference.
func (fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return []float32{0, 0, 0}, nil
	}
	return []float32{1, 0, 0}, nil
}

func (fakeEmbedder) Dimension() int { return 3 }

func testGradeHandler(rec grading.Recorder, transcript string) *GradeHandler {
	reg := registry.New(
		func() (stt.Transcriber, error) { return &fakeTranscriber{text: transcript}, nil },
		func() (registry.Embedder, error) { return fakeEmbedder{}, nil },
	)
	svc := grading.NewService(rec, grading.NewPipeline(reg))
	store := questions.NewStaticStore([]questions.Question{
		{ID: 1, Question: "What is biology?", Reference: "Biology is the study of life.", Keywords: "study, life"},
	})
	cfg := config.GradingConfig{ThresholdPercent: 65, MaxDurationSec: 30}
	return NewGradeHandler(svc, store, cfg)
}

func doGrade(t *testing.T, h *GradeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/grade", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Grade(w, req)
	return w
}

func TestGradeByQuestionID(t *testing.T) {
	h := testGradeHandler(&fakeRecorder{}, "biology is the study of life")

	w := doGrade(t, h, `{"question_id": 1, "duration_sec": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var res grading.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Passed || res.ScorePercent != 100 {
		t.Errorf("result = %+v, want passing score of 100", res)
	}
	if res.Reference != "Biology is the study of life." {
		t.Errorf("reference = %q, want bank reference", res.Reference)
	}
}

func TestGradeAdHocReference(t *testing.T) {
	h := testGradeHandler(&fakeRecorder{}, "the heart pumps blood")

	w := doGrade(t, h, `{"reference": "The heart circulates blood.", "duration_sec": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestGradeSilentAnswerScoresZero(t *testing.T) {
	h := testGradeHandler(&fakeRecorder{}, "")

	w := doGrade(t, h, `{"question_id": 1, "duration_sec": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a silent answer", w.Code)
	}

	var res grading.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Passed || res.ScorePercent != 0 {
		t.Errorf("result = %+v, want failing score of 0", res)
	}
}

func TestGradeZeroThresholdPasses(t *testing.T) {
	h := testGradeHandler(&fakeRecorder{}, "")

	w := doGrade(t, h, `{"question_id": 1, "duration_sec": 1, "threshold_percent": 0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var res grading.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Passed {
		t.Error("threshold 0 must pass a zero-score attempt, not be replaced by the default")
	}
	if res.ScorePercent != 0 {
		t.Errorf("score = %f, want 0 for a silent answer", res.ScorePercent)
	}
}

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if strings.TrimSpace(text) == "" {
		return []float32{0, 0, 0}, nil
	}
	return []float32{1, 0, 0}, nil
}

func (e *countingEmbedder) Dimension() int { return 3 }

// vectorStore is a bank that also serves precomputed reference embeddings,
// like the Postgres store after a warm-up run.
type vectorStore struct {
	questions.Store
	vec   []float32
	calls int
}

func (s *vectorStore) ReferenceEmbedding(ctx context.Context, id int) ([]float32, error) {
	s.calls++
	return s.vec, nil
}

func TestGradeUsesStoredReferenceEmbedding(t *testing.T) {
	emb := &countingEmbedder{}
	reg := registry.New(
		func() (stt.Transcriber, error) { return &fakeTranscriber{text: "the study of life"}, nil },
		func() (registry.Embedder, error) { return emb, nil },
	)
	svc := grading.NewService(&fakeRecorder{}, grading.NewPipeline(reg))
	store := &vectorStore{
		Store: questions.NewStaticStore([]questions.Question{
			{ID: 1, Reference: "Biology is the study of life."},
		}),
		vec: []float32{1, 0, 0},
	}
	h := NewGradeHandler(svc, store, config.GradingConfig{ThresholdPercent: 65, MaxDurationSec: 30})

	w := doGrade(t, h, `{"question_id": 1, "duration_sec": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if store.calls != 1 {
		t.Errorf("stored embedding fetched %d times, want 1", store.calls)
	}
	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1 (transcript only)", emb.calls)
	}

	var res grading.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Passed || res.ScorePercent != 100 {
		t.Errorf("result = %+v, want a full score against the stored vector", res)
	}
}

func TestGradeValidation(t *testing.T) {
	h := testGradeHandler(&fakeRecorder{}, "anything")

	cases := []struct {
		name string
		body string
	}{
		{"no reference or question", `{}`},
		{"duration over limit", `{"question_id": 1, "duration_sec": 300}`},
		{"negative duration", `{"question_id": 1, "duration_sec": -1}`},
		{"threshold over 100", `{"question_id": 1, "threshold_percent": 150}`},
		{"malformed body", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doGrade(t, h, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestGradeUnknownQuestion(t *testing.T) {
	h := testGradeHandler(&fakeRecorder{}, "anything")

	if w := doGrade(t, h, `{"question_id": 42}`); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGradeDeviceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"busy device", audio.ErrDeviceBusy, http.StatusConflict},
		{"unavailable device", audio.ErrDeviceUnavailable, http.StatusServiceUnavailable},
		{"read failure", audio.ErrDeviceRead, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := testGradeHandler(&fakeRecorder{err: tc.err}, "anything")
			if w := doGrade(t, h, `{"question_id": 1}`); w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
		})
	}
}

func TestGradeModelLoadFailure(t *testing.T) {
	reg := registry.New(
		func() (stt.Transcriber, error) { return nil, context.DeadlineExceeded },
		func() (registry.Embedder, error) { return fakeEmbedder{}, nil },
	)
	svc := grading.NewService(&fakeRecorder{}, grading.NewPipeline(reg))
	store := questions.NewStaticStore([]questions.Question{{ID: 1, Reference: "ref"}})
	h := NewGradeHandler(svc, store, config.GradingConfig{ThresholdPercent: 65, MaxDurationSec: 30})

	if w := doGrade(t, h, `{"question_id": 1}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when the model cannot load", w.Code)
	}
}
