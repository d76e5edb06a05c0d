// Package workflow runs a fixed, typed sequence of report-generation
// nodes over an immutable-per-step state, with per-node retries, node
// boundary cancellation, and one bounded regeneration back-edge.
package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/earningscope/engine/pkg/core/findata"
	"github.com/earningscope/engine/pkg/core/indicator"
)

// State is the full WorkflowState for one generate_report invocation.
// Nodes never mutate a State they receive; they build and return a new
// one (see appendStr below for the copy-on-append helper the With*
// methods use to stay honest about that).
type State struct {
	// Input triple.
	CompanyName  string
	CompanyCode  string
	ReportPeriod string
	IndustryCode string

	// fetch_financial_data output.
	IncomeStatement findata.Statement
	BalanceSheet    findata.Statement
	CashFlow        findata.Statement
	PreviousPeriod  string
	PreviousData    *findata.Previous

	// calculate_indicators output.
	CoreIndicators      map[string]indicator.Value
	AuxiliaryIndicators map[string]indicator.Value
	SpecificIndicators  map[string]indicator.Value
	AllIndicators       map[string]indicator.Value

	// retrieve_context output.
	RetrievedContext string

	// analyze_* output.
	CoreAnalysis      string
	AuxiliaryAnalysis string
	SpecificAnalysis  string

	// generate_report / quality_check output.
	FinalReport        string
	ReportQualityScore int
	ShouldRegenerate   bool
	RegenerationCount  int

	// Control counters.
	LLMCalls        int
	ToolsCalled     []string
	ProcessingSteps []string
	Errors          []string
	Warnings        []string
	CurrentStep     string

	CreatedAt      time.Time
	ProcessingTime time.Duration

	// RunID distinguishes concurrent/repeated invocations for the same
	// company/period in logs and traces; it plays no role in persistence
	// keying (reportstore still upserts by company_code+report_period).
	RunID string

	// Cancelled is true when the run was aborted by context cancellation
	// at a node boundary rather than by a node's own failure. A cancelled
	// run is a deliberate abort, not a fatal error, so it is never folded
	// into Errors; HasErrors() stays false and callers distinguish the
	// two terminal states by checking Cancelled.
	Cancelled bool
}

// NewState builds the initial state for one invocation, stamping a fresh
// RunID.
func NewState(companyName, companyCode, reportPeriod, industryCode string, createdAt time.Time) State {
	return State{
		CompanyName:  companyName,
		CompanyCode:  companyCode,
		ReportPeriod: reportPeriod,
		IndustryCode: industryCode,
		CreatedAt:    createdAt,
		RunID:        uuid.NewString(),
	}
}

// HasErrors reports whether any node has recorded a fatal error so far.
func (s State) HasErrors() bool {
	return len(s.Errors) > 0
}

// appendStr returns a new slice with items appended, never touching the
// backing array of s (so a node's returned patch never aliases the
// caller's slice).
func appendStr(s []string, items ...string) []string {
	out := make([]string, len(s), len(s)+len(items))
	copy(out, s)
	return append(out, items...)
}

// WithStep returns a copy of s with name appended to ProcessingSteps and
// set as CurrentStep.
func (s State) WithStep(name string) State {
	s.CurrentStep = name
	s.ProcessingSteps = appendStr(s.ProcessingSteps, name)
	return s
}

// WithTool returns a copy of s with name appended to ToolsCalled.
func (s State) WithTool(name string) State {
	s.ToolsCalled = appendStr(s.ToolsCalled, name)
	return s
}

// WithError returns a copy of s with msg appended to Errors.
func (s State) WithError(msg string) State {
	s.Errors = appendStr(s.Errors, msg)
	return s
}

// WithWarning returns a copy of s with msg appended to Warnings.
func (s State) WithWarning(msg string) State {
	s.Warnings = appendStr(s.Warnings, msg)
	return s
}

// WithCancelled returns a copy of s marked Cancelled, with msg recorded
// as a warning rather than an error: a context cancellation is a
// deliberate abort, not a node failure.
func (s State) WithCancelled(msg string) State {
	s.Cancelled = true
	return s.WithWarning(msg)
}

// WithLLMCall returns a copy of s with LLMCalls incremented.
func (s State) WithLLMCall() State {
	s.LLMCalls++
	return s
}
