package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates embeddings through the OpenAI embeddings API or
// any compatible endpoint (LocalAI, text-embeddings-inference) serving a
// sentence-embedding model such as all-MiniLM-L6-v2.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a provider against api.openai.com, or against
// baseURL when set.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	oReq := openai.EmbeddingRequest{
		Input: req.Input,
		Model: openai.EmbeddingModel(req.Model),
	}

	resp, err := p.client.CreateEmbeddings(ctx, oReq)
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}

	return &EmbeddingResponse{
		Model:      req.Model,
		Embeddings: embeddings,
	}, nil
}
