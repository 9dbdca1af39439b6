package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jobforge/jobforge-api/internal/config"
	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
)

// Generator implements the generation.Generator interface using Google's
// Gemini API.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// Ensure Generator implements generation.Generator
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a new Gemini-backed generator with the provided
// dependencies. Returns an error wrapping generation.ErrInvalidConfig if
// the configuration is incomplete or the client cannot be constructed.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Generate produces the artifact for the given kind. Parameters are
// validated (again) here so the generator is safe to call directly; the
// gateway has normally already rejected bad input.
func (g *Generator) Generate(
	ctx context.Context,
	kind domain.GenerationKind,
	params json.RawMessage,
) (json.RawMessage, error) {
	typedParams, err := generation.ValidateParams(kind, params)
	if err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(kind, typedParams)
	if err != nil {
		return nil, err
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parseResult(kind, text)
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to parse model response",
			"kind", string(kind),
			"error", err)
		return nil, err
	}

	return payload, nil
}

// callWithRetry makes a call to the Gemini API with exponential backoff and
// jitter for transient errors. Permanent errors (content blocked, malformed
// response) are returned immediately without retrying.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		text, err := g.callOnce(ctx, prompt, genCfg)
		if err == nil {
			return text, nil
		}

		// Permanent failures propagate immediately.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = 2^attempt seconds, scaled by a jitter factor in [0.5, 1.0)
		backoff := math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitter * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying Gemini API call after delay",
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single Gemini API call and maps the outcome onto the
// generation error taxonomy.
func (g *Generator) callOnce(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		// API-level failures are assumed transient; the retry loop bounds
		// how long we keep assuming that.
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	return text, nil
}
