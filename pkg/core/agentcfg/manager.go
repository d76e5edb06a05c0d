// Package agentcfg resolves which LLM provider backs each report node.
package agentcfg

import (
	"context"
	"fmt"

	"github.com/earningscope/engine/pkg/core/llm"
	"github.com/earningscope/engine/pkg/core/logx"
)

// Config is the provider-selection policy: a global default plus optional
// per-node overrides.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Nodes          map[string]NodeConfig `yaml:"nodes"`
}

// NodeConfig overrides provider selection for one report node
// (e.g. "analyze_core", "generate_report").
type NodeConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// Manager owns the live provider instances and resolves a node name to
// the provider that should serve it.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

// NewManager builds a Manager over the given providers map. Callers wire
// in whichever concrete llm.Provider implementations are configured for
// this deployment (DeepSeek, Qwen, Gemini, a MockProvider for tests).
func NewManager(config Config, providers map[string]llm.Provider) *Manager {
	return &Manager{config: config, providers: providers}
}

// GetProvider resolves the provider for a node name: node-specific
// override first, then the global active provider. It returns nil when
// neither names a registered provider; there is no further fallback.
func (m *Manager) GetProvider(nodeName string) llm.Provider {
	if nodeCfg, ok := m.config.Nodes[nodeName]; ok && nodeCfg.Provider != "" {
		if p, ok := m.providers[nodeCfg.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return nil
}

// GetProviderByName retrieves a provider instance by its configured name.
func (m *Manager) GetProviderByName(name string) llm.Provider {
	p, ok := m.providers[name]
	if !ok {
		logx.Warnf("agentcfg", "provider %q not found among %d registered providers", name, len(m.providers))
		return nil
	}
	return p
}

// ExecutePrompt adapts the system prompt for the resolved node's provider
// and sends the request, honoring ctx for cancellation.
func (m *Manager) ExecutePrompt(ctx context.Context, nodeName, rawPrompt, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(nodeName)
	if provider == nil {
		return "", fmt.Errorf("agentcfg: no provider resolved for node %q", nodeName)
	}
	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

// SetGlobalProvider changes the default provider used when a node has no
// override.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("agentcfg: provider %q not registered", name)
	}
	m.config.ActiveProvider = name
	logx.Infof("agentcfg", "global provider set to %s", name)
	return nil
}

// GetActiveProvider returns the name of the current global default provider.
func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}
