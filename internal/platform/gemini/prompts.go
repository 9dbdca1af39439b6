package gemini

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
)

// Prompt templates per generation kind. Each instructs the model to answer
// with a single JSON document matching the corresponding result schema in
// types.go.
const (
	coverLetterPromptTemplate = `You are an expert career coach. Draft a tailored cover letter.

Job description:
{{.JobDescription}}

Candidate resume:
{{.ResumeText}}

{{if .Tone}}Use a {{.Tone}} tone.{{else}}Use a professional tone.{{end}}

Respond with a single JSON object, no markdown fences, of the form:
{"cover_letter": "<the full letter text>"}`

	jobMatchPromptTemplate = `You are an expert technical recruiter. Score how well the candidate matches the posting.

Job description:
{{.JobDescription}}

Candidate resume:
{{.ResumeText}}

Respond with a single JSON object, no markdown fences, of the form:
{"score": <integer 0-100>, "strengths": ["..."], "gaps": ["..."], "summary": "<one paragraph>"}`

	interviewQuestionsPromptTemplate = `You are an experienced interviewer hiring for the role of {{.RoleTitle}}.

Job description:
{{.JobDescription}}

Generate {{if .Count}}{{.Count}}{{else}}10{{end}} interview questions the candidate should prepare for.

Respond with a single JSON object, no markdown fences, of the form:
{"questions": [{"question": "...", "guidance": "<what a strong answer covers>"}]}`
)

// promptTemplates maps each supported kind to its parsed template.
// Parsed once at package init; the templates are constants, so a parse
// failure is a programming error.
var promptTemplates = map[domain.GenerationKind]*template.Template{
	domain.KindCoverLetter:        template.Must(template.New(string(domain.KindCoverLetter)).Parse(coverLetterPromptTemplate)),
	domain.KindJobMatch:           template.Must(template.New(string(domain.KindJobMatch)).Parse(jobMatchPromptTemplate)),
	domain.KindInterviewQuestions: template.Must(template.New(string(domain.KindInterviewQuestions)).Parse(interviewQuestionsPromptTemplate)),
}

// buildPrompt renders the prompt for the given kind from its typed,
// already validated parameters.
func buildPrompt(kind domain.GenerationKind, params any) (string, error) {
	tmpl, ok := promptTemplates[kind]
	if !ok {
		return "", fmt.Errorf("%w: no prompt template for kind %q", generation.ErrInvalidParams, kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to execute prompt template for kind %q: %w", kind, err)
	}

	return buf.String(), nil
}
