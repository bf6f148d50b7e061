package queue

const (
	// TypeReferenceEmbed precomputes reference-answer embeddings so the
	// first grading attempt per question skips the embedding round-trip.
	TypeReferenceEmbed = "reference:embed"
)

type ReferenceEmbedPayload struct {
	QuestionID int `json:"question_id"` // 0 = the whole bank
}
