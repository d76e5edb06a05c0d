package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/earningscope/engine/pkg/core/ferr"
)

func stepNode(name string) NodeFunc {
	return func(_ context.Context, s State) (State, error) {
		return s, nil
	}
}

func TestRun_ExecutesNodesInOrder(t *testing.T) {
	e := New().
		Register(NodeFetchFinancialData, stepNode(NodeFetchFinancialData), NoRetry()).
		Register(NodeCalculateIndicators, stepNode(NodeCalculateIndicators), NoRetry()).
		Register(NodeQualityCheck, func(_ context.Context, s State) (State, error) {
			s.ShouldRegenerate = false
			return s, nil
		}, NoRetry())

	out, err := e.Run(context.Background(), NewState("示例公司", "000001", "2024Q1", "general", time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{NodeFetchFinancialData, NodeCalculateIndicators, NodeQualityCheck}
	if len(out.ProcessingSteps) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, out.ProcessingSteps)
	}
	for i, name := range want {
		if out.ProcessingSteps[i] != name {
			t.Fatalf("expected step %d = %s, got %s", i, name, out.ProcessingSteps[i])
		}
	}
}

func TestRun_RegenerationBackEdgeBounded(t *testing.T) {
	generateCalls := 0
	e := New().
		Register(NodeGenerateReport, func(_ context.Context, s State) (State, error) {
			generateCalls++
			s.FinalReport = "report"
			return s, nil
		}, NoRetry()).
		Register(NodeQualityCheck, func(_ context.Context, s State) (State, error) {
			if s.RegenerationCount < 2 {
				s.ShouldRegenerate = true
				s.RegenerationCount++
			} else {
				s.ShouldRegenerate = false
			}
			return s, nil
		}, NoRetry())

	out, err := e.Run(context.Background(), NewState("c", "000001", "2024Q1", "general", time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generateCalls != 3 {
		t.Fatalf("expected generate_report called 3 times (1 initial + 2 regenerations), got %d", generateCalls)
	}
	if out.ShouldRegenerate {
		t.Fatal("expected run to terminate with should_regenerate=false")
	}
}

func TestRun_NonTransientNodeErrorIsRecordedNotFatal(t *testing.T) {
	e := New().
		Register(NodeFetchFinancialData, func(_ context.Context, s State) (State, error) {
			return s, ferr.New(ferr.PermanentUpstream, "fetch_financial_data", nil)
		}, NoRetry()).
		Register(NodeCalculateIndicators, stepNode(NodeCalculateIndicators), NoRetry())

	out, err := e.Run(context.Background(), NewState("c", "000001", "2024Q1", "general", time.Now()))
	if err != nil {
		t.Fatalf("expected node-level error to not abort the run, got %v", err)
	}
	if !out.HasErrors() {
		t.Fatal("expected the permanent upstream error to be recorded in state.Errors")
	}
	if len(out.ProcessingSteps) != 2 {
		t.Fatalf("expected downstream node to still run, got steps %v", out.ProcessingSteps)
	}
}

func TestRun_TransientErrorRetriedThenRecorded(t *testing.T) {
	attempts := 0
	e := New().Register(NodeFetchFinancialData, func(_ context.Context, s State) (State, error) {
		attempts++
		return s, ferr.New(ferr.TransientUpstream, "fetch_financial_data", nil)
	}, FixedBackoff(3, time.Millisecond))

	out, err := e.Run(context.Background(), NewState("c", "000001", "2024Q1", "general", time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !out.HasErrors() {
		t.Fatal("expected error recorded after retries exhausted")
	}
}

func TestRun_CancelledContextAbortsAtNodeBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	e := New().Register(NodeFetchFinancialData, func(_ context.Context, s State) (State, error) {
		ran = true
		return s, nil
	}, NoRetry())

	out, err := e.Run(ctx, NewState("c", "000001", "2024Q1", "general", time.Now()))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if ran {
		t.Fatal("expected node to never run when context is already cancelled")
	}
	if !out.Cancelled {
		t.Fatal("expected Cancelled set on the returned state")
	}
	if out.HasErrors() {
		t.Fatalf("cancellation is a deliberate abort, not a node failure: expected no Errors, got %v", out.Errors)
	}
}

func TestRun_NodeCancelledErrorAbortsWithoutRecordingAnError(t *testing.T) {
	calculateRan := false
	e := New().
		Register(NodeFetchFinancialData, func(_ context.Context, s State) (State, error) {
			return s, ferr.New(ferr.Cancelled, "fetch_financial_data", context.Canceled)
		}, NoRetry()).
		Register(NodeCalculateIndicators, func(_ context.Context, s State) (State, error) {
			calculateRan = true
			return s, nil
		}, NoRetry())

	out, err := e.Run(context.Background(), NewState("c", "000001", "2024Q1", "general", time.Now()))
	if err == nil {
		t.Fatal("expected error when a node reports cancellation")
	}
	if calculateRan {
		t.Fatal("expected the run to abort instead of continuing to the next node")
	}
	if !out.Cancelled {
		t.Fatal("expected Cancelled set on the returned state")
	}
	if out.HasErrors() {
		t.Fatalf("cancellation is a deliberate abort, not a node failure: expected no Errors, got %v", out.Errors)
	}
}

func TestState_WithHelpersDoNotAliasBackingArray(t *testing.T) {
	base := NewState("c", "000001", "2024Q1", "general", time.Now())
	base.ProcessingSteps = []string{"a"}

	withB := base.WithStep("b")
	withC := base.WithStep("c")

	if len(withB.ProcessingSteps) != 2 || withB.ProcessingSteps[1] != "b" {
		t.Fatalf("unexpected withB steps: %v", withB.ProcessingSteps)
	}
	if len(withC.ProcessingSteps) != 2 || withC.ProcessingSteps[1] != "c" {
		t.Fatalf("unexpected withC steps: %v (mutation leaked across branches)", withC.ProcessingSteps)
	}
}
