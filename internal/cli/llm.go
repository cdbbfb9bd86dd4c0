package cli

import (
	"fmt"
	"os"

	"github.com/neurobridge/neurobridge/internal/model"
)

// configureLLM enables the generation service on the config. API keys come
// from the environment only; they are never read from or written to config
// files.
func configureLLM(cfg *model.Config, provider, modelName string) error {
	cfg.LLM.Provider = provider
	cfg.LLM.Model = modelName

	switch provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", provider)
	}
	return nil
}
