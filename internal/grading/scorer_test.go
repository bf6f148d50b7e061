package grading

import (
	"math"
	"testing"
)

func TestCosineSimilarityIdentity(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8, 0.1}

	if got := CosineSimilarity(v, v); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected cosine 1.0 for identical vectors, got %f", got)
	}

	score, passed := Score(v, v, 100)
	if math.Abs(score-100) > 1e-6 {
		t.Errorf("expected score 100 for identical vectors, got %f", score)
	}
	if !passed {
		t.Error("expected pass at threshold 100 for identical vectors")
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 4}

	ab, _ := Score(a, b, 50)
	ba, _ := Score(b, a, 50)
	if ab != ba {
		t.Errorf("expected symmetric score, got %f vs %f", ab, ba)
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, -1, 2}
	scaled := []float32{2.5, 5, 7.5} // a * 2.5

	orig := CosineSimilarity(a, b)
	got := CosineSimilarity(scaled, b)
	if math.Abs(orig-got) > 1e-6 {
		t.Errorf("positive scaling changed similarity: %f vs %f", orig, got)
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	if got := CosineSimilarity(zero, v); got != 0 {
		t.Errorf("expected 0 for zero-norm input, got %f", got)
	}

	score, passed := Score(zero, v, 50)
	if score != 0 || math.IsNaN(score) {
		t.Errorf("expected score 0 (not NaN) for zero-norm input, got %f", score)
	}
	if passed {
		t.Error("zero score must not pass a 50%% threshold")
	}
}

func TestNegativeSimilarityClampsToZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}

	score, passed := Score(a, b, 10)
	if score != 0 {
		t.Errorf("expected opposite vectors to score 0, got %f", score)
	}
	if passed {
		t.Error("clamped score must not pass a positive threshold")
	}
}

func TestThresholdBoundary(t *testing.T) {
	// a·b chosen so the score lands exactly on 60.
	a := []float32{1, 0}
	b := []float32{0.6, 0.8}

	tests := []struct {
		threshold float64
		want      bool
	}{
		{0, true},
		{30, true},
		{59.9999, true},
		{60, true}, // boundary equality passes
		{60.0001, false},
		{100, false},
	}

	for _, tc := range tests {
		score, passed := Score(a, b, tc.threshold)
		if math.Abs(score-60) > 1e-4 {
			t.Fatalf("expected score 60, got %f", score)
		}
		if passed != tc.want {
			t.Errorf("threshold %f: expected passed=%v, got %v", tc.threshold, tc.want, passed)
		}
	}
}

func TestMismatchedDimensionsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched dimensions")
		}
	}()
	CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
}
