package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Provider defines the interface for language-generation services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a text response for the given request
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for text generation
type GenerateRequest struct {
	// System is the system/persona instruction
	System string

	// Prompt is the full user prompt, including grounding context
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the generated output
type GenerateResponse struct {
	// Text is the generated response
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds generation-service configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// MaxResponseChars bounds accepted output length; the service is
	// untrusted and longer responses are rejected as invalid
	MaxResponseChars int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:         "", // Disabled by default
		Timeout:          30,
		MaxTokens:        1000,
		MaxResponseChars: 8000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:         cfg.Provider,
		Model:            cfg.Model,
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		Timeout:          cfg.Timeout,
		MaxTokens:        cfg.MaxTokens,
		MaxResponseChars: cfg.MaxResponseChars,
	}
}

// ValidateOutput checks generated text against the untrusted-output
// contract: non-empty after trimming, and within the configured bound.
func ValidateOutput(text string, maxChars int) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("generation service returned empty output")
	}
	if maxChars > 0 && len(trimmed) > maxChars {
		return fmt.Errorf("generation service returned %d chars, limit is %d", len(trimmed), maxChars)
	}
	return nil
}
