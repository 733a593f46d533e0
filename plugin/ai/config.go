package ai

import (
	"errors"

	"github.com/hrygo/helpgpt/internal/profile"
)

// LLMConfig represents the chat-completion relay configuration.
type LLMConfig struct {
	Model   string // openai/gpt-4.1-mini
	APIKey  string
	BaseURL string // API root; /chat/completions is appended
	// AppURL and AppName are sent as the Referer and X-Title attribution headers.
	AppURL  string
	AppName string
	// MaxConcurrent bounds in-flight relay calls. default: 4
	MaxConcurrent int64
}

// NewLLMConfigFromProfile creates the relay config from profile.
func NewLLMConfigFromProfile(p *profile.Profile) *LLMConfig {
	return &LLMConfig{
		Model:         p.LLMModel,
		APIKey:        p.LLMAPIKey,
		BaseURL:       p.LLMBaseURL,
		AppURL:        p.AppURL,
		AppName:       p.AppName,
		MaxConcurrent: p.LLMMaxConcurrent,
	}
}

// Validate validates the configuration.
func (c *LLMConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	if c.BaseURL == "" {
		return errors.New("LLM base URL is required")
	}
	return nil
}
