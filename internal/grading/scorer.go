package grading

import "math"

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1]. A zero-norm vector (degenerate embedding from empty input) has
// similarity 0 with everything. Mismatched dimensions are a programming
// error, not a runtime condition: both vectors must come from the same
// embedding model, so this panics rather than guessing.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		panic("grading: cosine similarity on mismatched dimensions")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score normalizes cosine similarity to a 0-100 grade and applies the
// pass threshold. Negative similarity clamps to 0: a "negative meaning
// match" and "no match" are the same grade.
func Score(a, b []float32, thresholdPercent float64) (scorePercent float64, passed bool) {
	cos := CosineSimilarity(a, b)
	scorePercent = math.Max(0, cos) * 100
	passed = scorePercent >= thresholdPercent
	return scorePercent, passed
}
