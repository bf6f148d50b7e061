package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/oralquiz/grader/internal/audio"
)

// ErrBadInput means the request itself was malformed (empty sample,
// unsupported rate). Speech the model cannot understand is not an error;
// it comes back as an empty or low-content transcript.
var ErrBadInput = errors.New("stt: malformed input")

// TranscriptionRequest holds the parameters for audio transcription.
type TranscriptionRequest struct {
	Sample   audio.Sample
	Language string // "" = auto-detect
	Prompt   string // context hint for domain terms (e.g. question keywords)
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Transcriber is the interface for speech-to-text backends.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

func validate(req TranscriptionRequest) error {
	if req.Sample.Empty() {
		return fmt.Errorf("%w: empty sample", ErrBadInput)
	}
	if req.Sample.Rate <= 0 {
		return fmt.Errorf("%w: unsupported sample rate %d", ErrBadInput, req.Sample.Rate)
	}
	return nil
}
