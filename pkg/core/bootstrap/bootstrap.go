// Package bootstrap wires the concrete collaborators (financial data
// client, embedder, vector store, prompt library, LLM providers) into a
// report.Deps and a fully registered workflow.Engine, the way every
// cmd/ binary in this module needs it assembled.
package bootstrap

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/earningscope/engine/pkg/core/agentcfg"
	"github.com/earningscope/engine/pkg/core/embed"
	"github.com/earningscope/engine/pkg/core/findata"
	"github.com/earningscope/engine/pkg/core/industry"
	"github.com/earningscope/engine/pkg/core/llm"
	"github.com/earningscope/engine/pkg/core/logx"
	"github.com/earningscope/engine/pkg/core/prompt"
	"github.com/earningscope/engine/pkg/core/report"
	"github.com/earningscope/engine/pkg/core/retrieve"
	"github.com/earningscope/engine/pkg/core/vectorstore"
	"github.com/earningscope/engine/pkg/core/workflow"
)

// Config gathers every external endpoint and file path a deployment
// needs to point at. Zero-value fields fall back to the same local
// defaults the standalone CLI tools use.
type Config struct {
	ResourcesDir     string
	IndustrySeedPath string
	IndustryOverride string
	ModelsConfigPath string
	FinDataURL       string
	EmbedURL         string
	VectorStore      vectorstore.Store // nil selects an in-memory store
	HTTPTimeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.ResourcesDir == "" {
		c.ResourcesDir = "config"
	}
	if c.IndustrySeedPath == "" {
		c.IndustrySeedPath = "config/industries.yaml"
	}
	if c.ModelsConfigPath == "" {
		c.ModelsConfigPath = "config/models.yaml"
	}
	if c.FinDataURL == "" {
		c.FinDataURL = "http://localhost:8090"
	}
	if c.EmbedURL == "" {
		c.EmbedURL = "http://localhost:8091"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	return c
}

// BuildDeps loads prompts, industry profiles, and model configuration
// from disk and constructs the shared collaborator bundle every report
// node depends on.
func BuildDeps(cfg Config) (report.Deps, error) {
	cfg = cfg.withDefaults()

	if err := prompt.LoadFromDirectory(cfg.ResourcesDir); err != nil {
		logx.Warnf("bootstrap", "failed to load prompt library from %s: %v", cfg.ResourcesDir, err)
	} else {
		logx.Infof("bootstrap", "loaded %d prompts from %s", prompt.Get().Count(), cfg.ResourcesDir)
	}
	if err := prompt.Get().RequireInventory(prompt.SystemPromptID, prompt.BucketCore, prompt.BucketAuxiliary, prompt.BucketSpecific, prompt.BucketFinal); err != nil {
		return report.Deps{}, fmt.Errorf("bootstrap: %w", err)
	}

	registry := industry.Get()
	if err := registry.LoadFromFile(cfg.IndustrySeedPath); err != nil {
		return report.Deps{}, fmt.Errorf("bootstrap: loading industry seed: %w", err)
	}
	if cfg.IndustryOverride != "" {
		if err := registry.LoadOverride(cfg.IndustryOverride); err != nil {
			return report.Deps{}, fmt.Errorf("bootstrap: loading industry override: %w", err)
		}
	}

	providers, agentCfg := loadProviders(cfg.ModelsConfigPath)
	manager := agentcfg.NewManager(agentCfg, providers)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	finDataClient := findata.New(cfg.FinDataURL, httpClient)
	embedClient := embed.New(embed.Config{BaseURL: cfg.EmbedURL, HTTPClient: httpClient})

	store := cfg.VectorStore
	if store == nil {
		logx.Warnf("bootstrap", "no vector store configured, falling back to an in-memory store (not persisted across runs)")
		store = vectorstore.NewMemStore()
	}
	retriever := retrieve.New(store, embedClient)

	return report.Deps{
		FinData:   finDataClient,
		Retriever: retriever,
		Industry:  registry,
		Prompts:   prompt.NewAssembler(prompt.Get()),
		Providers: manager,
	}, nil
}

// loadProviders reads the active-provider/per-node override policy from
// modelsConfigPath and constructs the fixed set of LLM providers this
// deployment can resolve against. A missing, unreadable or unparseable
// config file is not fatal: it is logged and the active provider
// defaults to deepseek.
func loadProviders(modelsConfigPath string) (map[string]llm.Provider, agentcfg.Config) {
	providers := map[string]llm.Provider{
		"deepseek": &llm.DeepSeekProvider{},
		"qwen":     &llm.QwenProvider{},
		"gemini":   &llm.GeminiProvider{},
	}

	var cfg agentcfg.Config
	data, err := os.ReadFile(modelsConfigPath)
	if err != nil {
		logx.Warnf("bootstrap", "no model config at %s (%v), defaulting active_provider to deepseek", modelsConfigPath, err)
		cfg.ActiveProvider = "deepseek"
		return providers, cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logx.Warnf("bootstrap", "failed to parse %s (%v), defaulting active_provider to deepseek", modelsConfigPath, err)
		cfg.ActiveProvider = "deepseek"
		return providers, cfg
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "deepseek"
	}
	return providers, cfg
}

// BuildEngine registers the eight report nodes in their fixed topology,
// with a retry policy per node: network-calling nodes get a bounded
// exponential-style fixed backoff, pure local nodes run exactly once.
func BuildEngine(deps report.Deps) *workflow.Engine {
	networkRetry := workflow.FixedBackoff(3, 500*time.Millisecond)

	return workflow.New().
		Register(workflow.NodeFetchFinancialData, report.FetchFinancialData(deps), networkRetry).
		Register(workflow.NodeCalculateIndicators, report.CalculateIndicators(deps), workflow.NoRetry()).
		Register(workflow.NodeRetrieveContext, report.RetrieveContext(deps), networkRetry).
		Register(workflow.NodeAnalyzeCore, report.AnalyzeCore(deps), networkRetry).
		Register(workflow.NodeAnalyzeAuxiliary, report.AnalyzeAuxiliary(deps), networkRetry).
		Register(workflow.NodeAnalyzeSpecific, report.AnalyzeSpecific(deps), networkRetry).
		Register(workflow.NodeGenerateReport, report.GenerateReport(deps), networkRetry).
		Register(workflow.NodeQualityCheck, report.QualityCheck(deps), workflow.NoRetry())
}
