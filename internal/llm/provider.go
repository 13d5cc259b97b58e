// Package llm adapts hosted language-model APIs to the single completion
// call the generator needs.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Prompt is one system + user exchange.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Provider completes a prompt and returns the model's text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ProviderType names a supported backend.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// Config selects and configures a provider.
type Config struct {
	Provider  ProviderType  `yaml:"provider"`
	APIKey    string        `yaml:"apiKey,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	BaseURL   string        `yaml:"baseURL,omitempty"`
	MaxTokens int           `yaml:"maxTokens,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel    = "gpt-4.1"
	DefaultMaxTokens      = 8192
	DefaultTimeout        = 2 * time.Minute
)

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.Model = DefaultOpenAIModel
		default:
			c.Model = DefaultAnthropicModel
		}
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate checks that the configuration can build a provider.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("llm: %s api key is required", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("llm: maxTokens must be positive")
	}
	return nil
}

// New builds the provider named by cfg.
func New(cfg Config) (Provider, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	default:
		return NewAnthropicProvider(cfg), nil
	}
}

// withTimeout bounds a single completion call.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
