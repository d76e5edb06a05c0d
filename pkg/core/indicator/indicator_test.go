package indicator

import (
	"math"
	"testing"

	"github.com/earningscope/engine/pkg/core/findata"
)

func fp(v float64) *float64 { return &v }

func TestQ1RatioSanity(t *testing.T) {
	income := findata.Statement{
		"revenue":           fp(100),
		"cost":              fp(60),
		"net_profit":        fp(10),
		"income_before_tax": fp(10),
	}
	balance := findata.Statement{
		"total_assets": fp(400),
		"total_equity": fp(200),
	}
	bundle := findata.Bundle{
		ReportPeriod:    "2024-03-31",
		IncomeStatement: income,
		BalanceSheet:    balance,
	}

	gm := GrossMargin(income)
	if !gm.Available || *gm.Value != 40.00 {
		t.Fatalf("expected gross_margin=40.00, got %+v", gm)
	}

	roe := ReturnOnEquity(income, balance, nil, bundle.ReportPeriod)
	if !roe.Available {
		t.Fatalf("expected roe available, got %+v", roe)
	}
	if !roe.Annualized {
		t.Fatal("expected annualized=true for Q1 period")
	}
	// net_profit=10 annualized by 4.0 = 40; avg(total_equity) with no
	// prior period is 200 unchanged; ROE = 40/200*100 = 20.00
	if *roe.Value != 20.00 {
		t.Fatalf("expected roe=20.00, got %v", *roe.Value)
	}
}

func TestNullPreviousGrowthIsUnavailable(t *testing.T) {
	current := findata.Statement{"revenue": fp(200)}
	v := RevenueGrowth(current, nil)
	if v.GrowthRate != nil {
		t.Fatalf("expected nil growth_rate with no previous period, got %v", *v.GrowthRate)
	}
	if v.Available != false {
		t.Fatal("expected the indicator to be unavailable without a previous value")
	}
	if v.Name != "营业收入增速" {
		t.Fatalf("unexpected name: %q", v.Name)
	}
}

func TestGrowthRateZeroOrNegativeBaseIsNull(t *testing.T) {
	if rate := growthRate(fp(50), fp(0)); rate != nil {
		t.Fatalf("expected nil growth rate for zero base, got %v", *rate)
	}
	if rate := growthRate(fp(50), fp(-10)); rate != nil {
		t.Fatalf("expected nil growth rate for negative base, got %v", *rate)
	}
}

func TestDuPontIdentityHolds(t *testing.T) {
	income := findata.Statement{
		"revenue":           fp(1000),
		"net_profit":        fp(100),
		"income_before_tax": fp(100),
	}
	balance := findata.Statement{
		"total_assets": fp(2000),
		"total_equity": fp(1000),
	}
	dupont := ComputeDuPont(income, balance, nil, "2024-12-31")
	if dupont.IdentityError == nil {
		t.Fatal("expected identity error to be computed when all components available")
	}
	if *dupont.IdentityError > 0.01 {
		t.Fatalf("expected DuPont identity to hold within 0.01, got %v", *dupont.IdentityError)
	}
}

func TestEBITFallsBackToFinanceExpenseAndFlagsApproximate(t *testing.T) {
	income := findata.Statement{
		"income_before_tax": fp(100),
		"finance_expense":   fp(5),
	}
	ebit, ok, approx := EBIT(income)
	if !ok {
		t.Fatal("expected EBIT to be computable from finance_expense fallback")
	}
	if !approx {
		t.Fatal("expected EBIT fallback to be flagged approximate")
	}
	if ebit != 105 {
		t.Fatalf("expected ebit=105, got %v", ebit)
	}
}

func TestAllFieldsNullProducesUnavailableIndicators(t *testing.T) {
	bundle := findata.Bundle{ReportPeriod: "2024-03-31"}
	all := Compute(bundle)
	for name, v := range all {
		if v.Available {
			t.Fatalf("expected %s to be unavailable with no input data, got %+v", name, v)
		}
		if v.Value != nil {
			t.Fatalf("expected %s.Value to be nil when unavailable", name)
		}
	}
}

func TestSafeDivRejectsNaNAndInf(t *testing.T) {
	if _, ok := safeDiv(1, 0); ok {
		t.Fatal("expected division by zero to be unavailable")
	}
	if _, ok := safeDiv(math.NaN(), 1); ok {
		t.Fatal("expected NaN numerator to be unavailable")
	}
	if _, ok := safeDiv(1, math.Inf(1)); ok {
		t.Fatal("expected Inf denominator to be unavailable")
	}
}

func TestAnnualizationFactorTable(t *testing.T) {
	cases := map[string]float64{
		"2024-03-31": 4.0,
		"2024-06-30": 2.0,
		"2024-09-30": 4.0 / 3.0,
		"2024-12-31": 1.0,
	}
	for period, want := range cases {
		got, ok := annualizationFactor(period)
		if !ok {
			t.Fatalf("expected %s to resolve a factor", period)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("period %s: expected factor %v, got %v", period, want, got)
		}
	}
}

func TestFinancialLiabilityRatioRequiresAtLeastOneItem(t *testing.T) {
	balance := findata.Statement{"total_assets": fp(1000)}
	v := FinancialLiabilityRatio(balance)
	if v.Available {
		t.Fatal("expected unavailable with no interest-bearing items present")
	}

	balance["short_term_borrowings"] = fp(100)
	v = FinancialLiabilityRatio(balance)
	if !v.Available || *v.Value != 10.00 {
		t.Fatalf("expected 10.00%% with one item present, got %+v", v)
	}
}
