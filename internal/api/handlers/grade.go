package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oralquiz/grader/internal/audio"
	"github.com/oralquiz/grader/internal/config"
	"github.com/oralquiz/grader/internal/grading"
	"github.com/oralquiz/grader/internal/questions"
	"github.com/oralquiz/grader/internal/registry"
	"github.com/oralquiz/grader/internal/stt"
)

// GradeHandler runs one oral-answer attempt end to end: record from the
// server's microphone, transcribe, and score against the reference.
type GradeHandler struct {
	svc   *grading.Service
	store questions.Store
	cfg   config.GradingConfig
}

func NewGradeHandler(svc *grading.Service, store questions.Store, cfg config.GradingConfig) *GradeHandler {
	return &GradeHandler{svc: svc, store: store, cfg: cfg}
}

type gradeRequest struct {
	// Either a question from the bank or an ad-hoc reference text.
	QuestionID int    `json:"question_id"`
	Reference  string `json:"reference"`
	Keywords   string `json:"keywords"`

	Language    string  `json:"language"`
	DurationSec float64 `json:"duration_sec"`
	// Absent = configured default. 0 is a valid threshold every attempt
	// passes, so the field must distinguish unset from zero.
	ThresholdPercent *float64 `json:"threshold_percent"`
}

// referenceVectorStore is implemented by question stores that hold a
// precomputed reference embedding (the Postgres store).
type referenceVectorStore interface {
	ReferenceEmbedding(ctx context.Context, id int) ([]float32, error)
}

func (h *GradeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.QuestionID == 0 && req.Reference == "" {
		writeError(w, http.StatusBadRequest, "question_id or reference required")
		return
	}
	if req.DurationSec < 0 || req.DurationSec > h.cfg.MaxDurationSec {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("duration_sec must be between 0 and %g", h.cfg.MaxDurationSec))
		return
	}
	if req.ThresholdPercent != nil && (*req.ThresholdPercent < 0 || *req.ThresholdPercent > 100) {
		writeError(w, http.StatusBadRequest, "threshold_percent must be between 0 and 100")
		return
	}

	attempt := grading.AttemptRequest{
		Duration:         time.Duration(req.DurationSec * float64(time.Second)),
		Reference:        req.Reference,
		Keywords:         req.Keywords,
		Language:         req.Language,
		ThresholdPercent: req.ThresholdPercent,
	}
	if attempt.ThresholdPercent == nil {
		attempt.ThresholdPercent = &h.cfg.ThresholdPercent
	}

	if req.QuestionID != 0 {
		q, err := h.store.Get(r.Context(), req.QuestionID)
		if errors.Is(err, questions.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load question")
			return
		}
		attempt.Reference = q.Reference
		attempt.Keywords = q.Keywords

		// Use the warm-up worker's precomputed embedding when the store has
		// one; any lookup failure just means embedding the reference live.
		if vs, ok := h.store.(referenceVectorStore); ok {
			if vec, err := vs.ReferenceEmbedding(r.Context(), q.ID); err == nil {
				attempt.ReferenceVector = vec
			}
		}
	}

	result, err := h.svc.RecordAndGrade(r.Context(), attempt)
	if err != nil {
		status, msg := gradeErrorStatus(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// gradeErrorStatus maps pipeline failures onto HTTP statuses. Attempts are
// never retried server-side; the client decides whether to try again.
func gradeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, audio.ErrDeviceBusy):
		return http.StatusConflict, "recording device is busy with another attempt"
	case errors.Is(err, audio.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable, "recording device unavailable"
	case errors.Is(err, registry.ErrModelLoad):
		return http.StatusServiceUnavailable, "model backend unavailable"
	case errors.Is(err, stt.ErrBadInput):
		return http.StatusBadRequest, "captured audio was not usable"
	case errors.Is(err, audio.ErrDeviceRead):
		return http.StatusInternalServerError, "recording failed mid-capture"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
