package domain

// GenerationKind identifies a content generation category.
type GenerationKind string

// Supported generation kinds. This is a closed set: every Task and every
// HistoryItem belongs to exactly one of these categories.
const (
	KindCoverLetter        GenerationKind = "cover_letter"
	KindJobMatch           GenerationKind = "job_match"
	KindInterviewQuestions GenerationKind = "interview_questions"
)

// IsValidGenerationKind reports whether kind is one of the supported
// generation categories.
func IsValidGenerationKind(kind GenerationKind) bool {
	switch kind {
	case KindCoverLetter, KindJobMatch, KindInterviewQuestions:
		return true
	default:
		return false
	}
}
