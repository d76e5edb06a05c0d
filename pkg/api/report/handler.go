// Package report exposes the report-generation workflow over HTTP:
// POST /api/report/generate runs the engine synchronously and returns
// the terminal state, GET /api/report/{report_id} reads back a
// previously persisted run.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/earningscope/engine/pkg/core/reportstore"
	"github.com/earningscope/engine/pkg/core/workflow"
)

var engine *workflow.Engine
var repo *reportstore.ReportRepository

// InitHandler wires the handler package to the shared engine built by
// the process's bootstrap step. Must be called before registering the
// HandleFunc routes.
func InitHandler(e *workflow.Engine) {
	engine = e
	repo = reportstore.NewReportRepository()
}

// GenerateRequest is the POST /api/report/generate body.
type GenerateRequest struct {
	CompanyName  string `json:"company_name"`
	CompanyCode  string `json:"company_code"`
	ReportPeriod string `json:"report_period"`
	IndustryCode string `json:"industry_code"`
	Persist      bool   `json:"persist"`
}

// GenerateResponse mirrors the workflow's structured terminal state: the
// engine never throws to callers, so a failed run is still a 200 with
// Success=false and Errors populated.
type GenerateResponse struct {
	ReportID       string   `json:"report_id"`
	FinalReport    string   `json:"final_report"`
	QualityScore   int      `json:"quality_score"`
	Success        bool     `json:"success"`
	RegenCount     int      `json:"regeneration_count"`
	ToolsCalled    []string `json:"tools_called"`
	Errors         []string `json:"errors,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	ProcessingTime string   `json:"processing_time"`
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleGenerate runs the report workflow synchronously and returns its
// terminal state. Generation is not fast: callers should expect this to
// take as long as the slowest LLM call times the regeneration bound.
func HandleGenerate(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.CompanyCode == "" || req.ReportPeriod == "" {
		http.Error(w, "company_code and report_period are required", http.StatusBadRequest)
		return
	}
	if req.IndustryCode == "" {
		req.IndustryCode = "general"
	}
	if engine == nil {
		http.Error(w, "report engine not initialized", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	initial := workflow.NewState(req.CompanyName, req.CompanyCode, req.ReportPeriod, req.IndustryCode, now)
	final, err := engine.Run(ctx, initial)
	if err != nil {
		http.Error(w, fmt.Sprintf("workflow run aborted: %v", err), http.StatusGatewayTimeout)
		return
	}

	rec := reportstore.FromState(req.CompanyName, final, now)
	if req.Persist {
		if err := repo.Save(ctx, rec); err != nil {
			http.Error(w, fmt.Sprintf("failed to persist report: %v", err), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, toResponse(rec, final))
}

// HandleGet reads back a previously persisted report by its report_id
// path suffix: /api/report/{report_id}.
func HandleGet(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	reportID := strings.TrimPrefix(r.URL.Path, "/api/report/")
	if reportID == "" {
		http.Error(w, "report_id is required", http.StatusBadRequest)
		return
	}

	rec, err := repo.Load(r.Context(), reportID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{
		ReportID:     rec.ReportID,
		FinalReport:  rec.FinalReport,
		QualityScore: rec.QualityScore,
		Success:      rec.Success,
		ToolsCalled:  rec.ToolsCalled,
		Errors:       rec.Errors,
		Warnings:     rec.Warnings,
	})
}

func toResponse(rec reportstore.Record, final workflow.State) GenerateResponse {
	return GenerateResponse{
		ReportID:       rec.ReportID,
		FinalReport:    rec.FinalReport,
		QualityScore:   rec.QualityScore,
		Success:        rec.Success,
		RegenCount:     final.RegenerationCount,
		ToolsCalled:    rec.ToolsCalled,
		Errors:         rec.Errors,
		Warnings:       rec.Warnings,
		ProcessingTime: final.ProcessingTime.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
