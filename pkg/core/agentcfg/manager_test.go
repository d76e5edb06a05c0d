package agentcfg

import (
	"context"
	"testing"

	"github.com/earningscope/engine/pkg/core/llm"
)

func TestGetProvider_NodeOverrideWinsOverGlobal(t *testing.T) {
	global := &llm.MockProvider{Response: "global"}
	override := &llm.MockProvider{Response: "override"}
	m := NewManager(Config{
		ActiveProvider: "global",
		Nodes: map[string]NodeConfig{
			"analyze_specific": {Provider: "override"},
		},
	}, map[string]llm.Provider{"global": global, "override": override})

	if p := m.GetProvider("analyze_specific"); p != override {
		t.Fatalf("expected override provider, got %v", p)
	}
	if p := m.GetProvider("analyze_core"); p != global {
		t.Fatalf("expected global provider, got %v", p)
	}
}

func TestGetProvider_UnregisteredOverrideFallsBackToGlobal(t *testing.T) {
	global := &llm.MockProvider{}
	m := NewManager(Config{
		ActiveProvider: "global",
		Nodes:          map[string]NodeConfig{"analyze_core": {Provider: "nonexistent"}},
	}, map[string]llm.Provider{"global": global})

	if p := m.GetProvider("analyze_core"); p != global {
		t.Fatalf("expected fallback to global provider, got %v", p)
	}
}

func TestExecutePrompt_AdaptsAndCallsResolvedProvider(t *testing.T) {
	mock := &llm.MockProvider{Response: "analysis text"}
	m := NewManager(Config{ActiveProvider: "mock"}, map[string]llm.Provider{"mock": mock})

	out, err := m.ExecutePrompt(context.Background(), "analyze_core", "user prompt", "system prompt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "analysis text" {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(mock.Calls) != 1 || mock.Calls[0].SystemPrompt != "system prompt" {
		t.Fatalf("unexpected recorded call: %+v", mock.Calls)
	}
}

func TestExecutePrompt_NoProviderResolvedReturnsError(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "missing"}, map[string]llm.Provider{})
	if _, err := m.ExecutePrompt(context.Background(), "analyze_core", "p", "s", nil); err == nil {
		t.Fatal("expected error when no provider resolves")
	}
}

func TestSetGlobalProvider_RejectsUnregisteredName(t *testing.T) {
	m := NewManager(Config{}, map[string]llm.Provider{"mock": &llm.MockProvider{}})
	if err := m.SetGlobalProvider("nonexistent"); err == nil {
		t.Fatal("expected error for unregistered provider name")
	}
	if err := m.SetGlobalProvider("mock"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.GetActiveProvider() != "mock" {
		t.Fatalf("expected active provider to be updated, got %q", m.GetActiveProvider())
	}
}
