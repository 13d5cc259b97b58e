package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dusk-indust/agentforge/internal/llm"
)

// LLMGenerator answers every role with a hosted model.
type LLMGenerator struct {
	provider  llm.Provider
	maxTokens int
}

// Compile-time interface check.
var _ Generator = (*LLMGenerator)(nil)

// NewLLMGenerator wraps a provider. maxTokens of zero leaves the provider's
// default in place.
func NewLLMGenerator(p llm.Provider, maxTokens int) *LLMGenerator {
	return &LLMGenerator{provider: p, maxTokens: maxTokens}
}

// Generate prompts the model for req.Role and returns the JSON object found
// in its reply.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	if _, ok := systemPrompts[req.Role]; !ok {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	text, err := g.provider.Complete(ctx, llm.Prompt{
		System:    systemPrompt(req.Role, req.Schema),
		User:      req.Prompt,
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	obj := extractJSON(text)
	if !json.Valid([]byte(obj)) {
		return nil, fmt.Errorf("%s reply is not JSON", g.provider.Name())
	}
	return json.RawMessage(obj), nil
}

// extractJSON pulls a JSON object out of model text that may wrap it in a
// markdown fence or surrounding prose.
func extractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end != -1 {
			return strings.TrimSpace(text[start : start+end])
		}
	}

	if idx := strings.Index(text, "```"); idx != -1 {
		start := idx + 3
		if nl := strings.Index(text[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(text[start:], "```"); end != -1 {
			return strings.TrimSpace(text[start : start+end])
		}
	}

	if idx := strings.Index(text, "{"); idx != -1 {
		depth := 0
		inString, escaped := false, false
		for i := idx; i < len(text); i++ {
			c := text[i]
			switch {
			case escaped:
				escaped = false
			case inString && c == '\\':
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return text[idx : i+1]
				}
			}
		}
	}

	return strings.TrimSpace(text)
}
