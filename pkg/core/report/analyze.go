package report

import (
	"context"
	"fmt"

	"github.com/earningscope/engine/pkg/core/indicator"
	"github.com/earningscope/engine/pkg/core/prompt"
	"github.com/earningscope/engine/pkg/core/workflow"
)

// analyzeBucketSpec names one of the three analyze_* nodes: the node
// name used to resolve an LLM provider, the prompt-template bucket id
// used to select the user-prompt template, which indicator bucket it
// reads from state, and where the resulting analysis text is written
// back into state.
type analyzeBucketSpec struct {
	nodeName     string
	promptBucket string
	bucket       func(s workflow.State) map[string]indicator.Value
	write        func(s workflow.State, analysis string) workflow.State
}

// analyzeBucket runs one bucketed analysis: it skips on a prior fatal
// error or an empty bucket (there is nothing to ask the model about),
// otherwise it renders the bucket's prompt, calls the resolved provider,
// and records the result.
func analyzeBucket(deps Deps, spec analyzeBucketSpec) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		if s.HasErrors() {
			return s, nil
		}

		bucket := spec.bucket(s)
		if len(bucket) == 0 {
			return spec.write(s, "数据不足，无法生成该部分分析。"), nil
		}

		profile, err := resolveProfile(deps, s.IndustryCode)
		if err != nil {
			return s.WithError(fmt.Sprintf("%s: %s", spec.nodeName, err.Error())), nil
		}

		systemPrompt, err := deps.Prompts.SystemPrompt(profile.Name, profile.Description)
		if err != nil {
			return s.WithError(fmt.Sprintf("%s: %s", spec.nodeName, err.Error())), nil
		}
		userPrompt, err := deps.Prompts.BucketPrompt(spec.promptBucket, s.CompanyName, s.ReportPeriod, profile.Name, formatIndicatorBlock(bucket))
		if err != nil {
			return s.WithError(fmt.Sprintf("%s: %s", spec.nodeName, err.Error())), nil
		}

		text, err := deps.Providers.ExecutePrompt(ctx, spec.nodeName, userPrompt, systemPrompt, nil)
		s = s.WithTool(spec.nodeName).WithLLMCall()
		if err != nil {
			return s, err
		}
		return spec.write(s, text), nil
	}
}

// AnalyzeCore builds the analyze_core node.
func AnalyzeCore(deps Deps) workflow.NodeFunc {
	return analyzeBucket(deps, analyzeBucketSpec{
		nodeName:     workflow.NodeAnalyzeCore,
		promptBucket: prompt.BucketCore,
		bucket:       func(s workflow.State) map[string]indicator.Value { return s.CoreIndicators },
		write: func(s workflow.State, analysis string) workflow.State {
			s.CoreAnalysis = analysis
			return s
		},
	})
}

// AnalyzeAuxiliary builds the analyze_auxiliary node.
func AnalyzeAuxiliary(deps Deps) workflow.NodeFunc {
	return analyzeBucket(deps, analyzeBucketSpec{
		nodeName:     workflow.NodeAnalyzeAuxiliary,
		promptBucket: prompt.BucketAuxiliary,
		bucket:       func(s workflow.State) map[string]indicator.Value { return s.AuxiliaryIndicators },
		write: func(s workflow.State, analysis string) workflow.State {
			s.AuxiliaryAnalysis = analysis
			return s
		},
	})
}

// AnalyzeSpecific builds the analyze_specific node.
func AnalyzeSpecific(deps Deps) workflow.NodeFunc {
	return analyzeBucket(deps, analyzeBucketSpec{
		nodeName:     workflow.NodeAnalyzeSpecific,
		promptBucket: prompt.BucketSpecific,
		bucket:       func(s workflow.State) map[string]indicator.Value { return s.SpecificIndicators },
		write: func(s workflow.State, analysis string) workflow.State {
			s.SpecificAnalysis = analysis
			return s
		},
	})
}
