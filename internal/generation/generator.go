package generation

import (
	"context"
	"encoding/json"

	"github.com/jobforge/jobforge-api/internal/domain"
)

// Generator defines the interface for producing application content from
// validated parameters. This interface is the boundary between the task
// orchestration core and external AI/LLM services: the core treats whatever
// sits behind it as an opaque, possibly slow, possibly failing collaborator.
type Generator interface {
	// Generate produces the artifact for the given kind from already
	// validated parameters. The returned payload is an opaque structured
	// JSON document specific to the kind.
	//
	// Implementations map their failures onto the package sentinels:
	// ErrContentBlocked, ErrInvalidResponse, ErrTransientFailure, or
	// ErrGenerationFailed.
	Generate(ctx context.Context, kind domain.GenerationKind, params json.RawMessage) (json.RawMessage, error)
}
