package industry

import (
	"testing"

	"github.com/earningscope/engine/pkg/core/ferr"
)

func newTestRegistry() *Registry {
	return &Registry{byCode: make(map[string]Profile), byName: make(map[string]string)}
}

func TestRegister_GetByCodeAndName(t *testing.T) {
	r := newTestRegistry()
	profile := Profile{
		Code: "software_subscription",
		Name: "软件订阅行业",
		Indicators: []IndicatorSpec{
			{Name: "revenue_growth", Priority: PriorityCore},
			{Name: "gross_margin", Priority: PriorityAuxiliary},
			{Name: "contract_liability_growth", Priority: PrioritySpecific},
		},
	}
	if err := r.Register(profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byCode, err := r.GetByCode("software_subscription")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byCode.Name != "软件订阅行业" {
		t.Fatalf("unexpected profile: %+v", byCode)
	}

	byName, err := r.GetByName("软件订阅行业")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byName.Code != "software_subscription" {
		t.Fatalf("unexpected profile: %+v", byName)
	}
}

func TestGetByCode_CaseInsensitive(t *testing.T) {
	r := newTestRegistry()
	r.Register(Profile{Code: "General", Name: "通用行业"})
	if _, err := r.GetByCode("general"); err != nil {
		t.Fatalf("expected case-insensitive lookup to succeed, got %v", err)
	}
}

func TestMissingIndustryIsDistinctErrorKind(t *testing.T) {
	r := newTestRegistry()
	_, err := r.GetByCode("nonexistent")
	if !ferr.Is(err, ferr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestIndicatorsByPriority(t *testing.T) {
	profile := Profile{
		Code: "general",
		Indicators: []IndicatorSpec{
			{Name: "a", Priority: PriorityCore},
			{Name: "b", Priority: PriorityAuxiliary},
			{Name: "c", Priority: PriorityCore},
		},
	}
	core := profile.IndicatorsByPriority(PriorityCore)
	if len(core) != 2 {
		t.Fatalf("expected 2 core indicators, got %d", len(core))
	}
}

func TestLoadFromFile_SeedIndustries(t *testing.T) {
	r := newTestRegistry()
	if err := r.LoadFromFile("../../../config/industries.yaml"); err != nil {
		t.Fatalf("unexpected error loading seed file: %v", err)
	}
	if r.Count() < 3 {
		t.Fatalf("expected at least 3 seed industries, got %d", r.Count())
	}
	profile, err := r.GetByCode("software_subscription")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.IndicatorsByPriority(PrioritySpecific)) == 0 {
		t.Fatal("expected software_subscription to declare a specific-tier indicator")
	}
}
