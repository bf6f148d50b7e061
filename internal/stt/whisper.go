package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// WhisperConfig holds configuration for a Whisper-compatible STT backend.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// Whisper transcribes audio using OpenAI's Whisper API or any endpoint
// speaking the same protocol (whisper.cpp server, LocalAI, ...).
type Whisper struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

// NewWhisper creates a Whisper transcriber with sensible defaults applied.
func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &Whisper{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (w *Whisper) Name() string { return "whisper" }

// Transcribe uploads the sample as WAV via multipart and returns the text.
// Silence or unintelligible speech yields an empty transcript, not an error.
func (w *Whisper) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "answer.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = fw.Write(encodeWAV(req.Sample)); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = mw.WriteField("model", w.cfg.Model)
	_ = mw.WriteField("response_format", "verbose_json")

	if req.Language != "" {
		_ = mw.WriteField("language", req.Language)
	}
	if req.Prompt != "" {
		_ = mw.WriteField("prompt", req.Prompt)
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", w.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if w.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	}

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &TranscriptionResponse{
		Text:     strings.TrimSpace(apiResp.Text),
		Language: apiResp.Language,
		Duration: apiResp.Duration,
	}, nil
}
