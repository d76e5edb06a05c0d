package reportstore

import (
	"testing"
	"time"

	"github.com/earningscope/engine/pkg/core/workflow"
)

func TestFromState_DerivesReportIDAndSuccessFromErrors(t *testing.T) {
	now := time.Now()
	s := workflow.NewState("ACME Corp", "000001", "2024Q4", "general", now)
	s.FinalReport = "report text"
	s.ReportQualityScore = 82

	rec := FromState("ACME Corp", s, now)
	if rec.ReportID != "000001_2024Q4" {
		t.Fatalf("expected report_id %q, got %q", "000001_2024Q4", rec.ReportID)
	}
	if !rec.Success {
		t.Fatalf("expected Success=true for an error-free state")
	}
	if rec.QualityScore != 82 {
		t.Fatalf("expected quality score carried over, got %d", rec.QualityScore)
	}
}

func TestFromState_FatalErrorsMeanNotSuccess(t *testing.T) {
	now := time.Now()
	s := workflow.NewState("ACME Corp", "000001", "2024Q4", "general", now).WithError("no income statement")

	rec := FromState("ACME Corp", s, now)
	if rec.Success {
		t.Fatalf("expected Success=false for a state carrying fatal errors")
	}
	if len(rec.Errors) != 1 {
		t.Fatalf("expected the recorded error carried into the Record, got %v", rec.Errors)
	}
}
