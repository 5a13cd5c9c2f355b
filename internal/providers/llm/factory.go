package llm

import (
	"os"
	"strings"
	"time"
)

// Options selects and configures a provider. Zero values fall back to
// environment variables and defaults.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// New returns a Client for the requested provider, falling back to the
// environment and finally to a MockClient when nothing is configured.
func New(opts Options) Client {
	prov := strings.ToLower(strings.TrimSpace(opts.Provider))
	if prov == "" {
		prov = strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	}
	switch prov {
	case "openai":
		if key := apiKey(opts.APIKey, "OPENAI_API_KEY"); key != "" {
			base := opts.BaseURL
			if base == "" {
				base = os.Getenv("OPENAI_API_BASE")
			}
			return NewOpenAIClient(key, base, model(opts.Model, "gpt-4o-mini"), opts.Timeout)
		}
	case "anthropic":
		if key := apiKey(opts.APIKey, "ANTHROPIC_API_KEY"); key != "" {
			return &AnthropicClient{APIKey: key, Model: model(opts.Model, "claude-3-5-sonnet-latest"), Timeout: opts.Timeout}
		}
	case "gemini":
		if key := apiKey(opts.APIKey, "GOOGLE_API_KEY"); key != "" {
			return &GeminiClient{APIKey: key, Model: model(opts.Model, "gemini-1.5-flash"), Timeout: opts.Timeout}
		}
	case "mock":
		return &MockClient{}
	}

	// Auto-detect by API key presence if provider not specified.
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return NewOpenAIClient(key, os.Getenv("OPENAI_API_BASE"), model(opts.Model, "gpt-4o-mini"), opts.Timeout)
	}
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		return &AnthropicClient{APIKey: key, Model: model(opts.Model, "claude-3-5-sonnet-latest"), Timeout: opts.Timeout}
	}
	if key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); key != "" {
		return &GeminiClient{APIKey: key, Model: model(opts.Model, "gemini-1.5-flash"), Timeout: opts.Timeout}
	}
	return &MockClient{}
}

// NewFromEnv builds a Client purely from environment variables.
func NewFromEnv() Client {
	return New(Options{Model: os.Getenv("LLM_MODEL")})
}

func apiKey(explicit, envKey string) string {
	if k := strings.TrimSpace(explicit); k != "" {
		return k
	}
	return strings.TrimSpace(os.Getenv(envKey))
}

func model(explicit, def string) string {
	if m := strings.TrimSpace(explicit); m != "" {
		return m
	}
	if m := strings.TrimSpace(os.Getenv("LLM_MODEL")); m != "" {
		return m
	}
	return def
}
