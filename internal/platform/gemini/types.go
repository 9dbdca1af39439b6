package gemini

// Result schemas the model is instructed to produce, one per generation
// kind. These are the opaque payloads the rest of the system stores and
// returns; only this package knows their shape on the way in.

// coverLetterResult is the JSON schema for cover letter generation.
type coverLetterResult struct {
	CoverLetter string `json:"cover_letter"`
}

// jobMatchResult is the JSON schema for job match scoring.
type jobMatchResult struct {
	Score     int      `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Summary   string   `json:"summary"`
}

// interviewQuestion is a single generated interview question with
// preparation guidance.
type interviewQuestion struct {
	Question string `json:"question"`
	Guidance string `json:"guidance"`
}

// interviewQuestionsResult is the JSON schema for interview question
// generation.
type interviewQuestionsResult struct {
	Questions []interviewQuestion `json:"questions"`
}
