package report

import (
	"context"

	"github.com/earningscope/engine/pkg/core/findata"
	"github.com/earningscope/engine/pkg/core/indicator"
	"github.com/earningscope/engine/pkg/core/industry"
	"github.com/earningscope/engine/pkg/core/workflow"
)

// CalculateIndicators builds the calculate_indicators node: skips if an
// earlier node already recorded a fatal error, otherwise computes the
// full indicator set and buckets it by the resolved industry profile's
// priority tiers.
func CalculateIndicators(deps Deps) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		if s.HasErrors() {
			return s, nil
		}

		bundle := findata.Bundle{
			StockCode:       s.CompanyCode,
			ReportPeriod:    s.ReportPeriod,
			ReportType:      DefaultReportType,
			IncomeStatement: s.IncomeStatement,
			BalanceSheet:    s.BalanceSheet,
			CashFlow:        s.CashFlow,
			PreviousPeriod:  s.PreviousPeriod,
			PreviousData:    s.PreviousData,
		}
		all := indicator.Compute(bundle)

		profile, err := resolveProfile(deps, s.IndustryCode)
		if err != nil {
			return s.WithError("calculate_indicators: " + err.Error()), nil
		}

		s.AllIndicators = all
		s.CoreIndicators = bucketIndicators(all, profile.IndicatorsByPriority(industry.PriorityCore))
		s.AuxiliaryIndicators = bucketIndicators(all, profile.IndicatorsByPriority(industry.PriorityAuxiliary))
		s.SpecificIndicators = bucketIndicators(all, profile.IndicatorsByPriority(industry.PrioritySpecific))
		return s.WithTool("calculate_indicators"), nil
	}
}

func bucketIndicators(all map[string]indicator.Value, specs []industry.IndicatorSpec) map[string]indicator.Value {
	out := make(map[string]indicator.Value, len(specs))
	for _, spec := range specs {
		if v, ok := all[spec.Name]; ok {
			out[spec.Name] = v
		}
	}
	return out
}
