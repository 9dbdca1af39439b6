// Package gemini implements the generation.Generator interface using
// Google's Gemini API. Prompts are built per generation kind from embedded
// templates, responses are requested in JSON mode and parsed into the
// kind-specific payload schemas, and transient API failures are retried
// with exponential backoff and jitter.
package gemini
