package report

import (
	"context"

	"github.com/earningscope/engine/pkg/core/workflow"
)

// RetrieveContext builds the retrieve_context node. A retrieval failure
// is a warning, not fatal: downstream analysis nodes proceed with an
// empty context block.
func RetrieveContext(deps Deps) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		if s.HasErrors() {
			return s, nil
		}

		text, err := deps.Retriever.GetContext(ctx, s.CompanyName, s.CompanyCode, s.ReportPeriod, "")
		s = s.WithTool("get_context")
		if err != nil {
			return s.WithWarning("retrieve_context: " + err.Error()), nil
		}
		s.RetrievedContext = text
		return s, nil
	}
}
