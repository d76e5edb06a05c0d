// Package report implements the eight concrete workflow nodes: fetch,
// calculate, retrieve, the three analyze buckets, generate, and the
// programmatic quality gate.
package report

import (
	"fmt"

	"github.com/earningscope/engine/pkg/core/agentcfg"
	"github.com/earningscope/engine/pkg/core/findata"
	"github.com/earningscope/engine/pkg/core/industry"
	"github.com/earningscope/engine/pkg/core/prompt"
	"github.com/earningscope/engine/pkg/core/retrieve"
)

// DefaultReportType is the statement consolidation type requested from
// the financial data service when a node doesn't have a more specific
// one. The workflow's public input triple (company, period, industry)
// has no report-type dimension, so the fetch node always asks for the
// consolidated statements.
const DefaultReportType = "合并报表"

// Deps bundles every collaborator a report node needs. One Deps is built
// per process and shared across concurrent generate_report invocations;
// every field it holds (Client, Retriever, Registry, Assembler, Manager)
// is itself documented safe for concurrent use.
type Deps struct {
	FinData   *findata.Client
	Retriever *retrieve.Retriever
	Industry  *industry.Registry
	Prompts   *prompt.Assembler
	Providers *agentcfg.Manager
}

// resolveProfile looks up the requested industry, falling back to
// "general" so an unrecognized or empty industry code degrades to the
// default indicator set rather than failing the whole run.
func resolveProfile(deps Deps, industryCode string) (industry.Profile, error) {
	if industryCode != "" {
		if p, err := deps.Industry.Get(industryCode); err == nil {
			return p, nil
		}
	}
	p, err := deps.Industry.GetByCode("general")
	if err != nil {
		return industry.Profile{}, fmt.Errorf("report: no industry profile resolvable (requested %q): %w", industryCode, err)
	}
	return p, nil
}
