package prompt

import (
	"strings"
	"testing"
)

func newTestRegistry() *Registry {
	return &Registry{
		prompts: make(map[string]*PromptTemplate),
		schemas: make(map[string]*ResponseSchema),
	}
}

func seedTestPrompts(t *testing.T, r *Registry) {
	t.Helper()
	templates := []*PromptTemplate{
		{ID: SystemPromptID, Category: "system", SystemPrompt: "你覆盖{{.IndustryName}}。{{.IndustryDescription}}"},
		{ID: BucketCore, Category: BucketCore, UserPromptTmpl: "核心 {{.CompanyName}} {{.ReportPeriod}}: {{.IndicatorBlock}}"},
		{ID: BucketAuxiliary, Category: BucketAuxiliary, UserPromptTmpl: "辅助 {{.IndicatorBlock}}"},
		{ID: BucketSpecific, Category: BucketSpecific, UserPromptTmpl: "特定 {{.IndustryName}}: {{.IndicatorBlock}}"},
		{ID: BucketFinal, Category: BucketFinal, UserPromptTmpl: "核心结论\n{{.CoreAnalysis}}\n分项分析\n{{.AuxiliaryAnalysis}} {{.SpecificAnalysis}}\n综合判断\n投资建议\n{{.RetrievedContext}}"},
	}
	for _, pt := range templates {
		if err := r.Register(pt); err != nil {
			t.Fatalf("register %s: %v", pt.ID, err)
		}
	}
}

func TestAssembler_SystemPrompt(t *testing.T) {
	r := newTestRegistry()
	seedTestPrompts(t, r)
	a := NewAssembler(r)

	out, err := a.SystemPrompt("软件订阅行业", "以订阅制收入为主")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "软件订阅行业") || !strings.Contains(out, "以订阅制收入为主") {
		t.Fatalf("expected rendered industry name and description, got %q", out)
	}
}

func TestAssembler_BucketPrompt(t *testing.T) {
	r := newTestRegistry()
	seedTestPrompts(t, r)
	a := NewAssembler(r)

	out, err := a.BucketPrompt(BucketCore, "示例公司", "2024Q1", "通用行业", "revenue_growth: +12.00%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "示例公司") || !strings.Contains(out, "2024Q1") || !strings.Contains(out, "revenue_growth") {
		t.Fatalf("expected rendered variables, got %q", out)
	}
}

func TestAssembler_BucketPrompt_UnknownBucket(t *testing.T) {
	r := newTestRegistry()
	seedTestPrompts(t, r)
	a := NewAssembler(r)

	if _, err := a.BucketPrompt("nonexistent", "c", "p", "i", "b"); err == nil {
		t.Fatal("expected error for unregistered bucket")
	}
}

func TestAssembler_FinalReportPrompt_IncludesRequiredSections(t *testing.T) {
	r := newTestRegistry()
	seedTestPrompts(t, r)
	a := NewAssembler(r)

	out, err := a.FinalReportPrompt("示例公司", "2024Q1", "core text", "aux text", "specific text", "历史对比...")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, required := range []string{"核心结论", "分项分析", "综合判断", "投资建议"} {
		if !strings.Contains(out, required) {
			t.Fatalf("expected %q in rendered final prompt, got %q", required, out)
		}
	}
}

func TestLoadFromDirectory_SeedsFixedInventory(t *testing.T) {
	Get().Clear()
	if err := LoadFromDirectory("../../../config"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{SystemPromptID, BucketCore, BucketAuxiliary, BucketSpecific, BucketFinal} {
		if _, err := Get().GetPrompt(id); err != nil {
			t.Fatalf("expected prompt %q to be loaded: %v", id, err)
		}
	}
}
