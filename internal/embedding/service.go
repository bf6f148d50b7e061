package embedding

import (
	"context"
	"fmt"
	"strings"
)

// Service turns text into fixed-dimension vectors through a Provider.
// An empty or whitespace-only input (a silent answer) embeds to the zero
// vector without a backend call: it scores 0 against everything, which is
// the grade such an answer deserves, and keeps the pipeline total.
type Service struct {
	provider Provider
	model    string
	dim      int
}

// NewService creates an embedding service. Model defaults to all-minilm
// and dim to Dimension (384) when zero-valued.
func NewService(p Provider, model string, dim int) *Service {
	if model == "" {
		model = "all-minilm"
	}
	if dim <= 0 {
		dim = Dimension
	}
	return &Service{provider: p, model: model, dim: dim}
}

// Model returns the configured embedding model name.
func (s *Service) Model() string { return s.model }

// Dimension returns the vector dimension this service produces and enforces.
func (s *Service) Dimension() int { return s.dim }

// Embed returns one vector per input text, in order. Blank texts map to the
// zero vector; the rest are batched to the provider in groups of 100.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var pending []string
	var pendingIdx []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = make([]float32, s.dim)
			continue
		}
		pending = append(pending, t)
		pendingIdx = append(pendingIdx, i)
	}

	const batchSize = 100
	var vectors [][]float32

	for i := 0; i < len(pending); i += batchSize {
		end := i + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		resp, err := s.provider.GenerateEmbedding(ctx, EmbeddingRequest{
			Model: s.model,
			Input: pending[i:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}
		vectors = append(vectors, resp.Embeddings...)
	}

	if len(vectors) != len(pending) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(pending), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != s.dim {
			return nil, fmt.Errorf("embedding dimension mismatch: model %s returned %d, want %d", s.model, len(v), s.dim)
		}
		out[pendingIdx[i]] = v
	}

	return out, nil
}

// EmbedSingle embeds one text.
func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}
