package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
)

// parseResult decodes and validates the model's JSON text into the payload
// for the given kind, re-encoding it canonically so downstream storage
// never sees markdown fences or trailing prose.
func parseResult(kind domain.GenerationKind, text string) (json.RawMessage, error) {
	text = stripFences(text)

	switch kind {
	case domain.KindCoverLetter:
		var result coverLetterResult
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
		}
		if strings.TrimSpace(result.CoverLetter) == "" {
			return nil, fmt.Errorf("%w: missing cover letter text", generation.ErrInvalidResponse)
		}
		return json.Marshal(result)

	case domain.KindJobMatch:
		var result jobMatchResult
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
		}
		if result.Score < 0 || result.Score > 100 {
			return nil, fmt.Errorf("%w: score %d out of range", generation.ErrInvalidResponse, result.Score)
		}
		return json.Marshal(result)

	case domain.KindInterviewQuestions:
		var result interviewQuestionsResult
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
		}
		if len(result.Questions) == 0 {
			return nil, fmt.Errorf("%w: no questions in response", generation.ErrInvalidResponse)
		}
		for i, q := range result.Questions {
			if strings.TrimSpace(q.Question) == "" {
				return nil, fmt.Errorf("%w: question %d is empty", generation.ErrInvalidResponse, i)
			}
		}
		return json.Marshal(result)

	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", generation.ErrInvalidParams, kind)
	}
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one despite the instructions.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
