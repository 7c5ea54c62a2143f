// Package ai provides the model client used by the analysis gateway. Two
// backends are supported: the Gemini API over REST (API key) and Vertex AI
// (project credentials). Both return the raw JSON text produced by the model;
// parsing and validation belong to the gateway.
package ai

import (
	"context"
	"fmt"
)

// Request is one generation call: a natural-language instruction, optional
// inline image bytes, and an optional structured response schema.
type Request struct {
	Instruction string
	ImageData   []byte
	ImageMIME   string
	Schema      map[string]any
}

// Client is a generative model backend.
type Client interface {
	// Ready reports whether the client has a usable credential. It is
	// checked before any network attempt.
	Ready() error
	// Generate runs one model call and returns the raw response text.
	// Failures are classified into the apierr taxonomy.
	Generate(ctx context.Context, req Request) (string, error)
}

// NewClient creates a model client for the configured backend.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Backend {
	case BackendGemini, "":
		return NewGeminiClient(cfg), nil
	case BackendVertex:
		return NewVertexClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported ai backend: %s", cfg.Backend)
	}
}
