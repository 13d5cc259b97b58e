package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider completes prompts with the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	cfg    Config
}

// NewAnthropicProvider creates a provider from an already defaulted config.
func NewAnthropicProvider(cfg Config) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{client: &client, cfg: cfg}
}

func (p *AnthropicProvider) Name() string {
	return string(ProviderAnthropic)
}

// Complete sends one user message and concatenates the text blocks of the
// reply.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	maxTokens := prompt.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic complete: empty response (stop reason %s)", msg.StopReason)
	}
	return sb.String(), nil
}
