package embedding

import "github.com/oralquiz/grader/internal/config"

// FromConfig builds the configured embedding service. Anything other than
// "openai" falls back to a local Ollama instance.
func FromConfig(cfg config.EmbeddingConfig) *Service {
	var p Provider
	if cfg.Backend == "openai" {
		p = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	} else {
		p = NewOllamaProvider(cfg.OllamaURL)
	}
	return NewService(p, cfg.Model, cfg.Dimension)
}
