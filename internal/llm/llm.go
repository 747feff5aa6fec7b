// Package llm builds the configured language model backend.
package llm

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/elsayed85/quick-rag/internal/config"
	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/llm/anthropic"
	"github.com/elsayed85/quick-rag/internal/llm/openai"
)

// New returns the model selected by cfg.Provider.
func New(cfg config.LLMConfig) (domain.LanguageModel, error) {
	key := ""
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}

	switch cfg.Provider {
	case "openai", "":
		if key == "" {
			return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
		}
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = key
			o.BaseURL = cfg.BaseURL
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "ollama":
		if key == "" {
			// Ollama ignores the key but the client requires one.
			key = "ollama"
		}
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = key
			o.BaseURL = cfg.BaseURL
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
			o.Model = cfg.Model
		}), nil
	case "anthropic":
		if key == "" {
			return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
		}
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = key
			o.BaseURL = cfg.BaseURL
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
