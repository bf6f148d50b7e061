package embedding

import (
	"context"
	"fmt"
	"testing"
)

// stubProvider returns a fixed vector per input text.
type stubProvider struct {
	dim   int
	calls int
	fail  bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	p.calls++
	if p.fail {
		return nil, fmt.Errorf("backend down")
	}
	out := make([][]float32, len(req.Input))
	for i := range req.Input {
		v := make([]float32, p.dim)
		v[0] = float32(len(req.Input[i]))
		out[i] = v
	}
	return &EmbeddingResponse{Model: req.Model, Embeddings: out}, nil
}

func TestEmbedEmptyTextYieldsZeroVector(t *testing.T) {
	p := &stubProvider{dim: Dimension}
	s := NewService(p, "", 0)

	vecs, err := s.Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatalf("empty text must not fail: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != Dimension {
		t.Fatalf("expected one %d-dim vector, got %v", Dimension, vecs)
	}
	for i, v := range vecs[0] {
		if v != 0 {
			t.Fatalf("expected zero vector, got %f at %d", v, i)
		}
	}
	if p.calls != 0 {
		t.Errorf("expected no backend call for blank input, got %d", p.calls)
	}
}

func TestEmbedPreservesOrderWithBlanks(t *testing.T) {
	p := &stubProvider{dim: Dimension}
	s := NewService(p, "", 0)

	vecs, err := s.Embed(context.Background(), []string{"abc", "   ", "defgh"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs[0][0] != 3 {
		t.Errorf("expected vector for %q at index 0, got %f", "abc", vecs[0][0])
	}
	if vecs[1][0] != 0 {
		t.Errorf("expected zero vector at index 1, got %f", vecs[1][0])
	}
	if vecs[2][0] != 5 {
		t.Errorf("expected vector for %q at index 2, got %f", "defgh", vecs[2][0])
	}
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	p := &stubProvider{dim: 768}
	s := NewService(p, "all-minilm", 384)

	_, err := s.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEmbedSinglePropagatesBackendError(t *testing.T) {
	p := &stubProvider{dim: Dimension, fail: true}
	s := NewService(p, "", 0)

	if _, err := s.EmbedSingle(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from failing backend")
	}
}
