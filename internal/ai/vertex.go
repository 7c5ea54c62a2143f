package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/aurascan/aurascan/internal/apierr"
)

// VertexClient calls Gemini through Vertex AI using project credentials.
// Vertex has no structured-output knob in this SDK version, so the response
// schema is folded into the instruction and code fences are stripped from the
// reply.
type VertexClient struct {
	cfg Config

	mu    sync.Mutex
	model *genai.GenerativeModel
}

// NewVertexClient creates a Vertex AI client. The underlying connection is
// established lazily on first use.
func NewVertexClient(cfg Config) *VertexClient {
	return &VertexClient{cfg: cfg}
}

// Ready reports whether project credentials are configured.
func (c *VertexClient) Ready() error {
	if c.cfg.ProjectID == "" {
		return apierr.Configuration("no Vertex AI project configured (set GOOGLE_PROJECT_ID)")
	}
	return nil
}

func (c *VertexClient) load(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		return c.model, nil
	}

	opts := []option.ClientOption{}
	if c.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, c.cfg.ProjectID, c.cfg.Location, opts...)
	if err != nil {
		return nil, apierr.Configuration(fmt.Sprintf("failed to create Vertex AI client: %v", err))
	}
	c.model = client.GenerativeModel(c.cfg.model())
	return c.model, nil
}

// Generate runs one model call through Vertex AI.
func (c *VertexClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}

	model, err := c.load(ctx)
	if err != nil {
		return "", err
	}

	instruction := req.Instruction
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema: %w", err)
		}
		instruction += "\n\nRespond with a single JSON object matching this schema, and nothing else:\n" + string(schemaJSON)
	}

	parts := []genai.Part{genai.Text(instruction)}
	if len(req.ImageData) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.ImageData(mime, req.ImageData))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", classifyTransport(ctx, err)
	}

	if len(resp.Candidates) == 0 {
		return "", apierr.Validation("no response generated")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", apierr.Validation("no content in response")
	}

	text := fmt.Sprintf("%v", candidate.Content.Parts[0])
	return StripFences(text), nil
}

// StripFences removes a surrounding markdown code fence, which some model
// versions wrap around JSON replies.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
