// Command ratios fetches one company/period's financial statements and
// prints the full computed indicator set as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/earningscope/engine/pkg/core/findata"
	"github.com/earningscope/engine/pkg/core/indicator"
	"github.com/earningscope/engine/pkg/core/logx"
	"github.com/earningscope/engine/pkg/core/report"
)

func main() {
	companyCode := flag.String("company-code", "", "company code to fetch, e.g. 000001")
	reportPeriod := flag.String("report-period", "", "report period to fetch, e.g. 2024-12-31")
	reportType := flag.String("report-type", report.DefaultReportType, "statement consolidation type")
	findataURL := flag.String("findata-url", "http://localhost:8090", "base URL of the financial data service")
	includePrevious := flag.Bool("include-previous", true, "also fetch the prior comparable period for growth indicators")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if *companyCode == "" || *reportPeriod == "" {
		fmt.Fprintln(os.Stderr, "ratios: -company-code and -report-period are required")
		os.Exit(1)
	}

	client := findata.New(*findataURL, &http.Client{Timeout: *timeout})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	bundle, err := client.CompleteFinancialData(ctx, *companyCode, *reportPeriod, *reportType, *includePrevious)
	if err != nil {
		logx.Errorf("ratios", "fetching %s/%s: %v", *companyCode, *reportPeriod, err)
		os.Exit(1)
	}

	values := indicator.Compute(*bundle)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		logx.Errorf("ratios", "encoding indicators: %v", err)
		os.Exit(1)
	}
}
