package ai

import (
	"testing"

	"github.com/hrygo/helpgpt/internal/profile"
)

// TestNewLLMConfigFromProfile tests relay configuration.
func TestNewLLMConfigFromProfile(t *testing.T) {
	prof := &profile.Profile{
		LLMAPIKey:        "sk-or-test",
		LLMModel:         "openai/gpt-4.1-mini",
		LLMBaseURL:       "https://openrouter.ai/api/v1",
		AppURL:           "http://localhost:8080",
		AppName:          "help-gpt",
		LLMMaxConcurrent: 2,
	}

	cfg := NewLLMConfigFromProfile(prof)

	if cfg.APIKey != "sk-or-test" {
		t.Errorf("Expected APIKey=sk-or-test, got %s", cfg.APIKey)
	}
	if cfg.Model != "openai/gpt-4.1-mini" {
		t.Errorf("Expected Model=openai/gpt-4.1-mini, got %s", cfg.Model)
	}
	if cfg.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("Expected BaseURL=https://openrouter.ai/api/v1, got %s", cfg.BaseURL)
	}
	if cfg.AppURL != "http://localhost:8080" {
		t.Errorf("Expected AppURL=http://localhost:8080, got %s", cfg.AppURL)
	}
	if cfg.AppName != "help-gpt" {
		t.Errorf("Expected AppName=help-gpt, got %s", cfg.AppName)
	}
	if cfg.MaxConcurrent != 2 {
		t.Errorf("Expected MaxConcurrent=2, got %d", cfg.MaxConcurrent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// TestLLMConfigValidate tests required fields.
func TestLLMConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         LLMConfig
		expectError bool
	}{
		{
			name:        "complete",
			cfg:         LLMConfig{APIKey: "k", Model: "m", BaseURL: "https://x"},
			expectError: false,
		},
		{
			name:        "missing key",
			cfg:         LLMConfig{Model: "m", BaseURL: "https://x"},
			expectError: true,
		},
		{
			name:        "missing model",
			cfg:         LLMConfig{APIKey: "k", BaseURL: "https://x"},
			expectError: true,
		},
		{
			name:        "missing base URL",
			cfg:         LLMConfig{APIKey: "k", Model: "m"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.expectError {
				t.Errorf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}
