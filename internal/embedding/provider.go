package embedding

import "context"

// Dimension is the vector size produced by all-MiniLM-class sentence
// embedding models. Both sides of a comparison must use the same model,
// so the service enforces this dimension on every backend response.
const Dimension = 384

// EmbeddingRequest is the input for embedding generation.
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingResponse is the output from embedding generation.
type EmbeddingResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// Provider abstracts a sentence-embedding backend (OpenAI-compatible
// server, Ollama, ...). Same text and same model must yield the same vector.
type Provider interface {
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Name() string
}
