package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider_RecordsCallsAndReturnsResponse(t *testing.T) {
	p := &MockProvider{Response: "fixed analysis text"}
	out, err := p.GenerateResponse(context.Background(), "user prompt", "system prompt", map[string]interface{}{"model": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "fixed analysis text" {
		t.Fatalf("unexpected response: %q", out)
	}
	if len(p.Calls) != 1 || p.Calls[0].Prompt != "user prompt" || p.Calls[0].SystemPrompt != "system prompt" {
		t.Fatalf("unexpected recorded call: %+v", p.Calls)
	}
}

func TestMockProvider_PropagatesConfiguredError(t *testing.T) {
	wantErr := errors.New("boom")
	p := &MockProvider{Err: wantErr}
	_, err := p.GenerateResponse(context.Background(), "p", "s", nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected configured error, got %v", err)
	}
}

func TestMockProvider_DefaultResponseEchoesPrompt(t *testing.T) {
	p := &MockProvider{}
	out, err := p.GenerateResponse(context.Background(), "what is the core trend", "sys", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected a non-empty default response")
	}
}
