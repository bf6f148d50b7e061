package stt

// LocalConfig holds configuration for the local whisper.cpp STT backend.
type LocalConfig struct {
	BaseURL string // default: "http://localhost:8178"
}

// Local wraps Whisper pointing at a local whisper.cpp server.
// Start the server with: ./server -m models/ggml-base.en.bin --port 8178
type Local struct {
	*Whisper
}

// NewLocal creates a Local transcriber backed by a whisper.cpp HTTP server.
func NewLocal(cfg LocalConfig) *Local {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	return &Local{
		Whisper: NewWhisper(WhisperConfig{
			BaseURL: baseURL,
			// No API key needed for local server
		}),
	}
}

func (l *Local) Name() string { return "local-whisper" }
