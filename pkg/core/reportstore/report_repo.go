package reportstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/earningscope/engine/pkg/core/workflow"
)

// Record is the durable, terminal-state projection of one generate_report
// run: the structured result spec.md's engine always hands back to
// callers, plus a stable ReportID for later lookup.
type Record struct {
	ReportID        string
	CompanyCode     string
	CompanyName     string
	ReportPeriod    string
	FinalReport     string
	QualityScore    int
	Success         bool
	LLMCalls        int
	ToolsCalled     []string
	ProcessingSteps []string
	Errors          []string
	Warnings        []string
	CreatedAt       time.Time
}

// FromState projects an engine State into the Record shape persisted by
// this repository. Success is false whenever the run recorded any fatal
// error, matching spec.md §4's "the engine never throws to callers"
// structured-result contract.
func FromState(companyName string, s workflow.State, createdAt time.Time) Record {
	return Record{
		ReportID:        s.CompanyCode + "_" + s.ReportPeriod,
		CompanyCode:     s.CompanyCode,
		CompanyName:     companyName,
		ReportPeriod:    s.ReportPeriod,
		FinalReport:     s.FinalReport,
		QualityScore:    s.ReportQualityScore,
		Success:         !s.HasErrors(),
		LLMCalls:        s.LLMCalls,
		ToolsCalled:     s.ToolsCalled,
		ProcessingSteps: s.ProcessingSteps,
		Errors:          s.Errors,
		Warnings:        s.Warnings,
		CreatedAt:       createdAt,
	}
}

// ReportRepository persists and retrieves generated-report runs, upserting
// on ReportID so a regeneration of the same company/period overwrites the
// previous run rather than accumulating duplicates.
type ReportRepository struct{}

// NewReportRepository builds a repository bound to the package-level pool.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// Save upserts rec by ReportID.
//
// Schema assumption (migrations managed elsewhere):
//
//	CREATE TABLE IF NOT EXISTS generated_reports (
//	  report_id     TEXT PRIMARY KEY,
//	  company_code  TEXT,
//	  company_name  TEXT,
//	  report_period TEXT,
//	  final_report  TEXT,
//	  quality_score INT,
//	  success       BOOLEAN,
//	  llm_calls     INT,
//	  trail_json    JSONB,
//	  created_at    TIMESTAMPTZ
//	);
func (r *ReportRepository) Save(ctx context.Context, rec Record) error {
	p := GetPool()
	if p == nil {
		return fmt.Errorf("reportstore: database pool not initialized")
	}

	trail, err := json.Marshal(struct {
		ToolsCalled     []string `json:"tools_called"`
		ProcessingSteps []string `json:"processing_steps"`
		Errors          []string `json:"errors"`
		Warnings        []string `json:"warnings"`
	}{rec.ToolsCalled, rec.ProcessingSteps, rec.Errors, rec.Warnings})
	if err != nil {
		return fmt.Errorf("reportstore: marshal trail: %w", err)
	}

	query := `
		INSERT INTO generated_reports (
			report_id, company_code, company_name, report_period,
			final_report, quality_score, success, llm_calls, trail_json, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (report_id)
		DO UPDATE SET
			final_report = EXCLUDED.final_report,
			quality_score = EXCLUDED.quality_score,
			success = EXCLUDED.success,
			llm_calls = EXCLUDED.llm_calls,
			trail_json = EXCLUDED.trail_json,
			created_at = EXCLUDED.created_at;
	`
	_, err = p.Exec(ctx, query,
		rec.ReportID, rec.CompanyCode, rec.CompanyName, rec.ReportPeriod,
		rec.FinalReport, rec.QualityScore, rec.Success, rec.LLMCalls, trail, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("reportstore: save %s: %w", rec.ReportID, err)
	}
	return nil
}

// Load retrieves one report run by its stable id.
func (r *ReportRepository) Load(ctx context.Context, reportID string) (Record, error) {
	p := GetPool()
	if p == nil {
		return Record{}, fmt.Errorf("reportstore: database pool not initialized")
	}

	query := `
		SELECT report_id, company_code, company_name, report_period,
		       final_report, quality_score, success, llm_calls, trail_json, created_at
		FROM generated_reports WHERE report_id = $1
	`
	var rec Record
	var trail []byte
	err := p.QueryRow(ctx, query, reportID).Scan(
		&rec.ReportID, &rec.CompanyCode, &rec.CompanyName, &rec.ReportPeriod,
		&rec.FinalReport, &rec.QualityScore, &rec.Success, &rec.LLMCalls, &trail, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Record{}, fmt.Errorf("reportstore: no report found for id %s", reportID)
		}
		return Record{}, fmt.Errorf("reportstore: load %s: %w", reportID, err)
	}

	var parsed struct {
		ToolsCalled     []string `json:"tools_called"`
		ProcessingSteps []string `json:"processing_steps"`
		Errors          []string `json:"errors"`
		Warnings        []string `json:"warnings"`
	}
	if err := json.Unmarshal(trail, &parsed); err != nil {
		return Record{}, fmt.Errorf("reportstore: unmarshal trail for %s: %w", reportID, err)
	}
	rec.ToolsCalled = parsed.ToolsCalled
	rec.ProcessingSteps = parsed.ProcessingSteps
	rec.Errors = parsed.Errors
	rec.Warnings = parsed.Warnings
	return rec, nil
}
