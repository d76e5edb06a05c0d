// Command earningscope is the single combinator entrypoint: it
// dispatches to the ingest, chunk, ratios, and report subcommands, each
// mirroring one of the standalone single-purpose binaries.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/earningscope/engine/pkg/core/bootstrap"
	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/embed"
	"github.com/earningscope/engine/pkg/core/findata"
	"github.com/earningscope/engine/pkg/core/indicator"
	"github.com/earningscope/engine/pkg/core/logx"
	"github.com/earningscope/engine/pkg/core/report"
	"github.com/earningscope/engine/pkg/core/reportstore"
	"github.com/earningscope/engine/pkg/core/vectorstore"
	"github.com/earningscope/engine/pkg/core/workflow"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: earningscope <ingest|chunk|ratios|report> [flags]")
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	var err error
	switch sub {
	case "ingest":
		err = runIngest(args)
	case "chunk":
		err = runChunk(args)
	case "ratios":
		err = runRatios(args)
	case "report":
		err = runReport(args)
	default:
		fmt.Fprintf(os.Stderr, "earningscope: unknown subcommand %q\n", sub)
		os.Exit(1)
	}
	if err != nil {
		logx.Errorf("earningscope", "%s: %v", sub, err)
		os.Exit(1)
	}
}

func runChunk(args []string) error {
	fs := flag.NewFlagSet("chunk", flag.ExitOnError)
	input := fs.String("input", "", "path to the Markdown filing to chunk")
	companyName := fs.String("company-name", "", "company display name")
	companyCode := fs.String("company-code", "", "company code")
	reportPeriod := fs.String("report-period", "", "report period, e.g. 2024-12-31")
	fs.Parse(args)

	if *input == "" || *companyCode == "" || *reportPeriod == "" {
		return fmt.Errorf("-input, -company-code, and -report-period are required")
	}

	result, err := chunk.ChunkFile(*input, chunk.Options{}, time.Now().Unix())
	if err != nil {
		return err
	}
	reportID := *companyCode + "_" + *reportPeriod
	for i := range result.Chunks {
		result.Chunks[i].ReportID = reportID
		result.Chunks[i].CompanyName = *companyName
		result.Chunks[i].CompanyCode = *companyCode
		result.Chunks[i].ReportPeriod = *reportPeriod
	}
	for _, w := range result.Warnings {
		logx.Warnf("earningscope.chunk", "%s", w)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Chunks)
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	input := fs.String("input", "", "path to the Markdown filing to ingest")
	companyName := fs.String("company-name", "", "company display name")
	companyCode := fs.String("company-code", "", "company code")
	reportPeriod := fs.String("report-period", "", "report period, e.g. 2024-12-31")
	embedURL := fs.String("embed-url", "http://localhost:8091", "base URL of the embedding service")
	milvusAddr := fs.String("milvus-addr", "", "Milvus gRPC address; empty uses an in-memory store")
	batchSize := fs.Int("batch-size", 16, "chunks per embedding request")
	timeout := fs.Duration("timeout", 60*time.Second, "overall ingestion timeout")
	fs.Parse(args)

	if *input == "" || *companyCode == "" || *reportPeriod == "" {
		return fmt.Errorf("-input, -company-code, and -report-period are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := chunk.ChunkFile(*input, chunk.Options{}, time.Now().Unix())
	if err != nil {
		return err
	}
	reportID := *companyCode + "_" + *reportPeriod
	chunks := result.Chunks
	for i := range chunks {
		chunks[i].ReportID = reportID
		chunks[i].CompanyName = *companyName
		chunks[i].CompanyCode = *companyCode
		chunks[i].ReportPeriod = *reportPeriod
	}

	embedder := embed.New(embed.Config{BaseURL: *embedURL, HTTPClient: &http.Client{Timeout: *timeout}})
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ChunkText
	}
	vectors, err := embedder.Encode(ctx, texts, *batchSize)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	var store vectorstore.Store
	if *milvusAddr == "" {
		logx.Warnf("earningscope.ingest", "no -milvus-addr given, using an in-memory store (results are discarded on exit)")
		store = vectorstore.NewMemStore()
	} else {
		if err := embedder.Health(ctx); err != nil {
			return fmt.Errorf("probing embedding dimension: %w", err)
		}
		c, err := mclient.NewGrpcClient(ctx, *milvusAddr)
		if err != nil {
			return fmt.Errorf("connecting to milvus: %w", err)
		}
		store = vectorstore.NewMilvusStore(c, embedder.Dimension())
	}
	if err := store.EnsureCollection(ctx); err != nil {
		return err
	}
	if err := store.Insert(ctx, chunks, vectors); err != nil {
		return err
	}
	logx.Infof("earningscope.ingest", "inserted %d chunks for report_id=%s", len(chunks), reportID)
	return nil
}

func runRatios(args []string) error {
	fs := flag.NewFlagSet("ratios", flag.ExitOnError)
	companyCode := fs.String("company-code", "", "company code")
	reportPeriod := fs.String("report-period", "", "report period, e.g. 2024-12-31")
	reportType := fs.String("report-type", report.DefaultReportType, "statement consolidation type")
	findataURL := fs.String("findata-url", "http://localhost:8090", "base URL of the financial data service")
	includePrevious := fs.Bool("include-previous", true, "also fetch the prior comparable period")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	fs.Parse(args)

	if *companyCode == "" || *reportPeriod == "" {
		return fmt.Errorf("-company-code and -report-period are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := findata.New(*findataURL, &http.Client{Timeout: *timeout})
	bundle, err := client.CompleteFinancialData(ctx, *companyCode, *reportPeriod, *reportType, *includePrevious)
	if err != nil {
		return err
	}
	values := indicator.Compute(*bundle)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(values)
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	companyName := fs.String("company-name", "", "company display name")
	companyCode := fs.String("company-code", "", "company code")
	reportPeriod := fs.String("report-period", "", "report period, e.g. 2024-12-31")
	industryCode := fs.String("industry-code", "general", "industry profile code")
	findataURL := fs.String("findata-url", "http://localhost:8090", "base URL of the financial data service")
	embedURL := fs.String("embed-url", "http://localhost:8091", "base URL of the embedding service")
	modelsConfig := fs.String("models-config", "config/models.yaml", "path to the provider-selection config")
	persist := fs.Bool("persist", false, "save the run to the database (requires DATABASE_URL)")
	timeout := fs.Duration("timeout", 5*time.Minute, "overall workflow timeout")
	fs.Parse(args)

	if *companyCode == "" || *reportPeriod == "" {
		return fmt.Errorf("-company-code and -report-period are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	deps, err := bootstrap.BuildDeps(bootstrap.Config{
		FinDataURL:       *findataURL,
		EmbedURL:         *embedURL,
		ModelsConfigPath: *modelsConfig,
	})
	if err != nil {
		return err
	}
	engine := bootstrap.BuildEngine(deps)

	now := time.Now()
	initial := workflow.NewState(*companyName, *companyCode, *reportPeriod, *industryCode, now)
	final, err := engine.Run(ctx, initial)
	if err != nil {
		return fmt.Errorf("workflow run aborted: %w", err)
	}

	if *persist {
		if err := reportstore.InitDB(ctx); err != nil {
			return fmt.Errorf("initializing report store: %w", err)
		}
		rec := reportstore.FromState(*companyName, final, now)
		if err := reportstore.NewReportRepository().Save(ctx, rec); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		logx.Infof("earningscope.report", "saved report_id=%s", rec.ReportID)
	}

	if final.HasErrors() {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		enc.Encode(final.Errors)
		return fmt.Errorf("report generation completed with errors")
	}
	fmt.Println(final.FinalReport)
	return nil
}
