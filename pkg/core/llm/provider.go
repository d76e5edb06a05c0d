package llm

import (
	"context"
	"fmt"
)

// Provider is the interface every analysis/generation node calls through.
// Implementations own their own API key resolution, request shaping, and
// error wrapping; the workflow engine only sees GenerateResponse.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats.
	AdaptInstructions(rawInstructions string) string
}

// MockProvider is a deterministic test double: it never makes a network
// call and returns either a fixed response or a fixed error, recording
// every call it receives for assertions.
type MockProvider struct {
	Response string
	Err      error
	Calls    []MockCall
}

// MockCall captures one GenerateResponse invocation against a MockProvider.
type MockCall struct {
	Prompt       string
	SystemPrompt string
	Options      map[string]interface{}
}

func (p *MockProvider) GenerateResponse(_ context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	p.Calls = append(p.Calls, MockCall{Prompt: prompt, SystemPrompt: systemPrompt, Options: options})
	if p.Err != nil {
		return "", p.Err
	}
	if p.Response != "" {
		return p.Response, nil
	}
	return fmt.Sprintf("mock response to: %s", prompt), nil
}

func (p *MockProvider) AdaptInstructions(raw string) string {
	return raw
}

var _ Provider = (*MockProvider)(nil)
