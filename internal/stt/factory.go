package stt

import "github.com/oralquiz/grader/internal/config"

// FromConfig builds the configured transcription backend. Anything other
// than "openai" falls back to the local whisper.cpp server.
func FromConfig(cfg config.STTConfig) Transcriber {
	if cfg.Backend == "openai" {
		return NewWhisper(WhisperConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
		})
	}
	return NewLocal(LocalConfig{BaseURL: cfg.LocalBaseURL})
}
