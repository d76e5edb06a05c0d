package findata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/earningscope/engine/pkg/core/ferr"
)

func TestClient_IncomeStatement_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"revenue": 1000.5, "营业成本": 600.0},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	stmt, err := c.IncomeStatement(context.Background(), "000001", "2024-03-31", "quarterly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt["revenue"] == nil || *stmt["revenue"] != 1000.5 {
		t.Fatalf("expected revenue=1000.5, got %+v", stmt["revenue"])
	}
	if stmt["cost"] == nil || *stmt["cost"] != 600.0 {
		t.Fatalf("expected cost aliased from 营业成本, got %+v", stmt["cost"])
	}
}

func TestClient_IncomeStatement_NotFoundReturnsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "no such period"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	stmt, err := c.IncomeStatement(context.Background(), "000001", "2099-03-31", "quarterly")
	if err != nil {
		t.Fatalf("expected no error for success:false, got %v", err)
	}
	if stmt != nil {
		t.Fatalf("expected nil statement, got %+v", stmt)
	}
}

func TestClient_IncomeStatement_404ReturnsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	stmt, err := c.IncomeStatement(context.Background(), "000001", "2099-03-31", "quarterly")
	if err != nil {
		t.Fatalf("expected no error for 404, got %v", err)
	}
	if stmt != nil {
		t.Fatalf("expected nil statement, got %+v", stmt)
	}
}

func TestClient_5xxExhaustsRetriesAsTransient(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.BalanceSheet(context.Background(), "000001", "2024-03-31", "quarterly")
	if !ferr.Is(err, ferr.TransientUpstream) {
		t.Fatalf("expected TransientUpstream, got %v", err)
	}
	if attempts != retriesStatement+1 {
		t.Fatalf("expected %d attempts, got %d", retriesStatement+1, attempts)
	}
}

func TestClient_HistoricalPeriods_UsesSmallerRetryBudget(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.HistoricalPeriods(context.Background(), "000001", "2024-06-30", 4)
	if !ferr.Is(err, ferr.TransientUpstream) {
		t.Fatalf("expected TransientUpstream, got %v", err)
	}
	if attempts != retriesHistorical+1 {
		t.Fatalf("expected %d attempts for historical_periods, got %d", retriesHistorical+1, attempts)
	}
}

func TestClient_HistoricalPeriods_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    []string{"2024-03-31", "2023-12-31", "2023-09-30"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	periods, err := c.HistoricalPeriods(context.Background(), "000001", "2024-06-30", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 3 || periods[0] != "2024-03-31" {
		t.Fatalf("unexpected periods: %+v", periods)
	}
}

func TestClient_CompleteFinancialData_WithPrevious(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"stock_code":       "000001",
				"report_period":    "2024-06-30",
				"report_type":      "quarterly",
				"income_statement": map[string]interface{}{"revenue": 2000.0},
				"balance_sheet":    map[string]interface{}{"total_assets": 5000.0},
				"cash_flow":        map[string]interface{}{"net_operating_cash_flow": 300.0},
				"previous_period":  "2024-03-31",
				"previous_data": map[string]interface{}{
					"income_statement": map[string]interface{}{"revenue": 1800.0},
					"balance_sheet":     map[string]interface{}{"total_assets": 4800.0},
					"cash_flow":         map[string]interface{}{"net_operating_cash_flow": 250.0},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	bundle, err := c.CompleteFinancialData(context.Background(), "000001", "2024-06-30", "quarterly", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.IncomeStatement["revenue"] == nil || *bundle.IncomeStatement["revenue"] != 2000.0 {
		t.Fatalf("unexpected current revenue: %+v", bundle.IncomeStatement["revenue"])
	}
	if bundle.PreviousData == nil || bundle.PreviousData.IncomeStatement["revenue"] == nil ||
		*bundle.PreviousData.IncomeStatement["revenue"] != 1800.0 {
		t.Fatalf("unexpected previous revenue: %+v", bundle.PreviousData)
	}
	if bundle.PreviousPeriod != "2024-03-31" {
		t.Fatalf("expected previous_period=2024-03-31, got %q", bundle.PreviousPeriod)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": map[string]interface{}{}})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(srv.URL, nil)
	_, err := c.IncomeStatement(ctx, "000001", "2024-03-31", "quarterly")
	if !ferr.Is(err, ferr.Cancelled) {
		t.Fatalf("expected Cancelled, got %v", err)
	}
}
