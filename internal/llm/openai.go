package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider completes prompts with the OpenAI Responses API.
type OpenAIProvider struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAIProvider creates a provider from an already defaulted config.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, cfg: cfg}
}

func (p *OpenAIProvider) Name() string {
	return string(ProviderOpenAI)
}

// Complete sends the system and user messages and returns the output text.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	maxTokens := prompt.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	input := make(responses.ResponseInputParam, 0, 2)
	if prompt.System != "" {
		input = append(input, responses.ResponseInputItemParamOfMessage(prompt.System, responses.EasyInputMessageRoleSystem))
	}
	input = append(input, responses.ResponseInputItemParamOfMessage(prompt.User, responses.EasyInputMessageRoleUser))

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(p.cfg.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
		MaxOutputTokens: openai.Int(int64(maxTokens)),
	}

	result, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("openai complete: %s", result.Error.Message)
	}

	text := result.OutputText()
	if text == "" {
		return "", fmt.Errorf("openai complete: empty response")
	}
	return text, nil
}
