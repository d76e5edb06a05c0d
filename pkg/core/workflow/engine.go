package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/earningscope/engine/pkg/core/ferr"
)

// Fixed node names, matching the topology's single entry point and
// single conditional back-edge:
//
//	fetch_financial_data -> calculate_indicators -> retrieve_context
//	 -> analyze_core -> analyze_auxiliary -> analyze_specific
//	 -> generate_report -> quality_check
//	 quality_check --should_regenerate--> generate_report
//	 quality_check --else--> END
const (
	NodeFetchFinancialData = "fetch_financial_data"
	NodeCalculateIndicators = "calculate_indicators"
	NodeRetrieveContext     = "retrieve_context"
	NodeAnalyzeCore         = "analyze_core"
	NodeAnalyzeAuxiliary    = "analyze_auxiliary"
	NodeAnalyzeSpecific     = "analyze_specific"
	NodeGenerateReport      = "generate_report"
	NodeQualityCheck        = "quality_check"
)

// DefaultMaxRegenerations is the bound on quality_check -> generate_report
// back-edge traversals before the run terminates with whatever report is
// in hand.
const DefaultMaxRegenerations = 2

// NodeFunc reads state and returns the state to carry forward. A
// non-nil error means this node's own work could not complete: the
// engine classifies it as transient (retried per RetryPolicy) or
// non-transient (recorded into the returned state's Errors and the run
// continues to the next node, per spec — a node failure is not a run
// failure). Node implementations that want to record a business-level
// failure without signalling a retry should instead return
// (s.WithError(...), nil).
type NodeFunc func(ctx context.Context, s State) (State, error)

// RetryPolicy controls how many attempts in all a node gets when it
// returns transient upstream errors, and how long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// NoRetry runs a node exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// FixedBackoff runs a node up to maxAttempts times in all, with a
// constant delay between attempts.
func FixedBackoff(maxAttempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     func(int) time.Duration { return delay },
	}
}

type nodeDef struct {
	name  string
	fn    NodeFunc
	retry RetryPolicy
}

// Engine runs a registered sequence of nodes over a State, single
// threaded per invocation: one node completes fully before the next
// starts. Separate Run calls share no mutable state and may proceed in
// parallel.
type Engine struct {
	nodes            []nodeDef
	maxRegenerations int
}

// New builds an empty engine. Register nodes in execution order with
// Register, then call Run.
func New() *Engine {
	return &Engine{maxRegenerations: DefaultMaxRegenerations}
}

// WithMaxRegenerations overrides DefaultMaxRegenerations.
func (e *Engine) WithMaxRegenerations(n int) *Engine {
	e.maxRegenerations = n
	return e
}

// Register appends a node to the execution order.
func (e *Engine) Register(name string, fn NodeFunc, retry RetryPolicy) *Engine {
	e.nodes = append(e.nodes, nodeDef{name: name, fn: fn, retry: retry})
	return e
}

func (e *Engine) indexOf(name string) int {
	for i, nd := range e.nodes {
		if nd.name == name {
			return i
		}
	}
	return -1
}

// Run executes the registered nodes in order, honoring the
// quality_check -> generate_report back-edge and ctx cancellation at
// node boundaries. It returns the final state; a non-nil error only
// indicates the run was aborted by context cancellation, never a node's
// own business-logic failure (those live in state.Errors). A cancelled
// run is reported via the returned state's Cancelled flag, not Errors —
// see State.WithCancelled.
func (e *Engine) Run(ctx context.Context, initial State) (State, error) {
	state := initial
	genReportIdx := e.indexOf(NodeGenerateReport)

	idx := 0
	regenerations := 0
	for idx < len(e.nodes) {
		if err := ctx.Err(); err != nil {
			return state.WithCancelled(fmt.Sprintf("cancelled before %s: %v", e.nodes[idx].name, err)), err
		}

		nd := e.nodes[idx]
		next, err := e.runWithRetry(ctx, nd, state)
		if err != nil {
			if ferr.Is(err, ferr.Cancelled) {
				return next.WithCancelled(fmt.Sprintf("%s: %v", nd.name, err)), err
			}
			next = state.WithError(fmt.Sprintf("%s: %v", nd.name, err))
		}
		state = next.WithStep(nd.name)

		if nd.name == NodeQualityCheck {
			state.ProcessingTime = time.Since(state.CreatedAt)
			if state.ShouldRegenerate && genReportIdx >= 0 && regenerations < e.maxRegenerations {
				regenerations++
				idx = genReportIdx
				continue
			}
			break
		}
		idx++
	}
	return state, nil
}

// runWithRetry applies nd's retry policy for transient upstream errors
// only; any other error returns immediately without retrying.
func (e *Engine) runWithRetry(ctx context.Context, nd nodeDef, s State) (State, error) {
	attempts := nd.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		next, err := nd.fn(ctx, s)
		if err == nil {
			return next, nil
		}
		lastErr = err
		if !ferr.Is(err, ferr.TransientUpstream) {
			return s, err
		}
		if attempt < attempts-1 && nd.retry.Backoff != nil {
			select {
			case <-ctx.Done():
				return s, ferr.New(ferr.Cancelled, nd.name, ctx.Err())
			case <-time.After(nd.retry.Backoff(attempt)):
			}
		}
	}
	return s, lastErr
}
