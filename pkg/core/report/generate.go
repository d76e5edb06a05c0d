package report

import (
	"context"
	"fmt"

	"github.com/earningscope/engine/pkg/core/workflow"
)

// GenerateReport builds the generate_report node. It is also the target
// of the quality_check back-edge: every invocation re-renders the final
// prompt from whatever core/auxiliary/specific/retrieved-context fields
// are currently in state and asks the model for a fresh report.
func GenerateReport(deps Deps) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		if s.HasErrors() {
			return s, nil
		}

		profile, err := resolveProfile(deps, s.IndustryCode)
		if err != nil {
			return s.WithError(fmt.Sprintf("generate_report: %s", err.Error())), nil
		}

		systemPrompt, err := deps.Prompts.SystemPrompt(profile.Name, profile.Description)
		if err != nil {
			return s.WithError(fmt.Sprintf("generate_report: %s", err.Error())), nil
		}
		userPrompt, err := deps.Prompts.FinalReportPrompt(s.CompanyName, s.ReportPeriod, s.CoreAnalysis, s.AuxiliaryAnalysis, s.SpecificAnalysis, s.RetrievedContext)
		if err != nil {
			return s.WithError(fmt.Sprintf("generate_report: %s", err.Error())), nil
		}

		text, err := deps.Providers.ExecutePrompt(ctx, workflow.NodeGenerateReport, userPrompt, systemPrompt, nil)
		s = s.WithTool(workflow.NodeGenerateReport).WithLLMCall()
		if err != nil {
			return s, err
		}

		s.FinalReport = ComposeReport(s.CompanyName, s.ReportPeriod, text)
		s.ShouldRegenerate = false
		return s, nil
	}
}
