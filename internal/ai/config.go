package ai

import (
	"os"
	"time"
)

// Supported backends.
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

const defaultModel = "gemini-2.5-flash"

// Config holds model backend configuration. Credentials are only ever read
// from the process environment.
type Config struct {
	Backend string `json:"backend"`
	Model   string `json:"model"`

	// Gemini REST backend
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`

	// Vertex AI backend
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`

	Timeout         time.Duration `json:"-"`
	MaxOutputTokens int           `json:"max_output_tokens"`
}

// LoadEnv fills unset fields from environment variables.
func (c *Config) LoadEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("API_KEY")
	}
	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
}

func (c *Config) model() string {
	if c.Model == "" {
		return defaultModel
	}
	return c.Model
}
