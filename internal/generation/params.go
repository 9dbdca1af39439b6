package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jobforge/jobforge-api/internal/domain"
)

// Shared validator instance for parameter structs.
var validate = validator.New()

// CoverLetterParams are the inputs for drafting a cover letter.
type CoverLetterParams struct {
	JobDescription string `json:"job_description" validate:"required,min=20"`
	ResumeText     string `json:"resume_text"     validate:"required,min=20"`
	Tone           string `json:"tone"            validate:"omitempty,oneof=professional conversational enthusiastic"`
}

// JobMatchParams are the inputs for scoring a resume against a posting.
type JobMatchParams struct {
	JobDescription string `json:"job_description" validate:"required,min=20"`
	ResumeText     string `json:"resume_text"     validate:"required,min=20"`
}

// InterviewQuestionsParams are the inputs for generating likely interview
// questions for a role.
type InterviewQuestionsParams struct {
	JobDescription string `json:"job_description" validate:"required,min=20"`
	RoleTitle      string `json:"role_title"      validate:"required,min=2"`
	Count          int    `json:"count"           validate:"omitempty,gte=1,lte=25"`
}

// ValidateParams decodes and validates raw parameters for the given kind.
// It returns the typed parameter struct on success, or an error wrapping
// ErrInvalidParams describing the first problem found. Validation happens
// before any generator call; these errors indicate caller misuse and are
// never retried.
func ValidateParams(kind domain.GenerationKind, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: parameters are required", ErrInvalidParams)
	}

	var params any
	switch kind {
	case domain.KindCoverLetter:
		params = &CoverLetterParams{}
	case domain.KindJobMatch:
		params = &JobMatchParams{}
	case domain.KindInterviewQuestions:
		params = &InterviewQuestionsParams{}
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, domain.ErrInvalidGenerationKind)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(params); err != nil {
		return nil, fmt.Errorf("%w: malformed parameters for kind %q: %v", ErrInvalidParams, kind, err)
	}

	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, firstValidationProblem(err))
	}

	return params, nil
}

// firstValidationProblem condenses a validator error into a single
// field-level message suitable for surfacing to callers.
func firstValidationProblem(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("field %q is required", fe.Field())
		case "min":
			return fmt.Sprintf("field %q is too short", fe.Field())
		case "oneof":
			return fmt.Sprintf("field %q has an unsupported value", fe.Field())
		case "gte", "lte":
			return fmt.Sprintf("field %q is out of range", fe.Field())
		default:
			return fmt.Sprintf("field %q failed validation", fe.Field())
		}
	}
	return err.Error()
}
