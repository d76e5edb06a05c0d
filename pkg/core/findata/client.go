package findata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/earningscope/engine/pkg/core/ferr"
	"github.com/earningscope/engine/pkg/core/logx"
)

// Client is the HTTP façade client for the financial-data service.
// Shared read-mostly handle; safe for concurrent use by multiple
// generate_report invocations.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
}

// Per-endpoint retry budgets (retries after the first attempt): historical_periods
// gets a smaller budget than the three-statement/composite endpoints
// because a missing history is a far more common, cheaper-to-accept
// outcome than a missing statement.
const (
	retriesStatement  = 3
	retriesHistorical = 2
	retriesComposite  = 3
)

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// post executes one retried POST against path, decodes the response into
// an envelope and returns its raw data payload with found=true.
// Returns (nil, false, nil) on success:false or 404; returns an error
// only for transport failures after retries are exhausted or a non-2xx
// status other than the upstream's own not-found signal.
func (c *Client) post(ctx context.Context, op, path string, body interface{}, retries int) (json.RawMessage, bool, error) {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return nil, false, ferr.New(ferr.Internal, op, err)
	}

	var env envelope
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBytes))
		if err != nil {
			return nil, false, ferr.New(ferr.Internal, op, err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false, ferr.New(ferr.Cancelled, op, ctx.Err())
			}
			lastErr = ferr.New(ferr.TransientUpstream, op, err)
			if attempt < retries {
				logx.Warnf("findata", "%s attempt %d/%d timed out, retrying", op, attempt+1, retries+1)
				time.Sleep(backoffFor(attempt))
				continue
			}
			return nil, false, lastErr
		}

		respBody, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		if readErr != nil {
			lastErr = ferr.New(ferr.TransientUpstream, op, readErr)
			if attempt < retries {
				time.Sleep(backoffFor(attempt))
				continue
			}
			return nil, false, lastErr
		}

		if res.StatusCode == http.StatusNotFound {
			return nil, false, nil
		}
		if res.StatusCode >= 500 {
			lastErr = ferr.New(ferr.TransientUpstream, op, fmt.Errorf("status=%d", res.StatusCode))
			if attempt < retries {
				logx.Warnf("findata", "%s attempt %d/%d got 5xx, retrying", op, attempt+1, retries+1)
				time.Sleep(backoffFor(attempt))
				continue
			}
			return nil, false, lastErr
		}
		if res.StatusCode != http.StatusOK {
			return nil, false, ferr.New(ferr.PermanentUpstream, op, fmt.Errorf("status=%d body=%s", res.StatusCode, respBody))
		}

		if err := json.Unmarshal(respBody, &env); err != nil {
			return nil, false, ferr.New(ferr.PermanentUpstream, op, err)
		}
		if !env.Success {
			return nil, false, nil
		}
		return env.Data, true, nil
	}
	return nil, false, lastErr
}

func backoffFor(attempt int) time.Duration {
	return 200 * time.Millisecond * time.Duration(1<<attempt)
}

// IncomeStatement fetches the income statement, or nil if not found.
func (c *Client) IncomeStatement(ctx context.Context, stockCode, period, reportType string) (Statement, error) {
	data, found, err := c.post(ctx, "findata.IncomeStatement", "/api/income-statement",
		map[string]string{"stock_code": stockCode, "report_period": period, "report_type": reportType}, retriesStatement)
	if err != nil || !found {
		return nil, err
	}
	return decodeStatement(data)
}

// BalanceSheet fetches the balance sheet, or nil if not found.
func (c *Client) BalanceSheet(ctx context.Context, stockCode, period, reportType string) (Statement, error) {
	data, found, err := c.post(ctx, "findata.BalanceSheet", "/api/balance-sheet",
		map[string]string{"stock_code": stockCode, "report_period": period, "report_type": reportType}, retriesStatement)
	if err != nil || !found {
		return nil, err
	}
	return decodeStatement(data)
}

// CashFlow fetches the cash flow statement, or nil if not found.
func (c *Client) CashFlow(ctx context.Context, stockCode, period, reportType string) (Statement, error) {
	data, found, err := c.post(ctx, "findata.CashFlow", "/api/cash-flow",
		map[string]string{"stock_code": stockCode, "report_period": period, "report_type": reportType}, retriesStatement)
	if err != nil || !found {
		return nil, err
	}
	return decodeStatement(data)
}

// HistoricalPeriods returns up to count report periods before (and
// excluding) `before`, descending. Uses a smaller retry budget than the
// statement endpoints: a missing history is an acceptable, common
// outcome, not worth the same retry cost as a missing statement.
func (c *Client) HistoricalPeriods(ctx context.Context, stockCode, before string, count int) ([]string, error) {
	data, found, err := c.post(ctx, "findata.HistoricalPeriods", "/api/historical-periods",
		map[string]interface{}{"stock_code": stockCode, "current_period": before, "count": count}, retriesHistorical)
	if err != nil || !found {
		return nil, err
	}
	var periods []string
	if err := json.Unmarshal(data, &periods); err != nil {
		return nil, ferr.New(ferr.PermanentUpstream, "findata.HistoricalPeriods", err)
	}
	return periods, nil
}

// CompleteFinancialData fetches the composite bundle: current-period
// three statements plus up to one prior period's three statements.
func (c *Client) CompleteFinancialData(ctx context.Context, stockCode, period, reportType string, includePrevious bool) (*Bundle, error) {
	data, found, err := c.post(ctx, "findata.CompleteFinancialData", "/api/complete-data",
		map[string]interface{}{
			"stock_code": stockCode, "report_period": period, "report_type": reportType,
			"include_previous": includePrevious,
		}, retriesComposite)
	if err != nil || !found {
		return nil, err
	}

	var raw struct {
		StockCode       string                 `json:"stock_code"`
		ReportPeriod    string                 `json:"report_period"`
		ReportType      string                 `json:"report_type"`
		IncomeStatement map[string]interface{} `json:"income_statement"`
		BalanceSheet    map[string]interface{} `json:"balance_sheet"`
		CashFlow        map[string]interface{} `json:"cash_flow"`
		PreviousPeriod  string                 `json:"previous_period"`
		PreviousData    *struct {
			IncomeStatement map[string]interface{} `json:"income_statement"`
			BalanceSheet    map[string]interface{} `json:"balance_sheet"`
			CashFlow        map[string]interface{} `json:"cash_flow"`
		} `json:"previous_data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ferr.New(ferr.PermanentUpstream, "findata.CompleteFinancialData", err)
	}

	bundle := &Bundle{
		StockCode:       raw.StockCode,
		ReportPeriod:    raw.ReportPeriod,
		ReportType:      raw.ReportType,
		IncomeStatement: normalize(raw.IncomeStatement),
		BalanceSheet:    normalize(raw.BalanceSheet),
		CashFlow:        normalize(raw.CashFlow),
		PreviousPeriod:  raw.PreviousPeriod,
	}
	if raw.PreviousData != nil {
		bundle.PreviousData = &Previous{
			IncomeStatement: normalize(raw.PreviousData.IncomeStatement),
			BalanceSheet:    normalize(raw.PreviousData.BalanceSheet),
			CashFlow:        normalize(raw.PreviousData.CashFlow),
		}
	}
	return bundle, nil
}

func decodeStatement(data json.RawMessage) (Statement, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ferr.New(ferr.PermanentUpstream, "findata.decodeStatement", err)
	}
	return normalize(raw), nil
}
