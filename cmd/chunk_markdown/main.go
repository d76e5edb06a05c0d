// Command chunk_markdown turns one Markdown filing into its ordered,
// heading-aware chunk sequence and prints the result as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/logx"
)

func main() {
	input := flag.String("input", "", "path to the Markdown filing to chunk")
	output := flag.String("output", "", "path to write chunk JSON (default: stdout)")
	companyName := flag.String("company-name", "", "company display name stamped onto every chunk")
	companyCode := flag.String("company-code", "", "company code stamped onto every chunk")
	reportPeriod := flag.String("report-period", "", "report period stamped onto every chunk, e.g. 2024-12-31")
	maxChars := flag.Int("max-chars", chunk.DefaultMaxChars, "maximum packed characters per chunk")
	minChars := flag.Int("min-chars", chunk.DefaultMinChars, "minimum characters; a shorter segment is merged into the preceding one (the first into the next)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "chunk_markdown: -input is required")
		os.Exit(1)
	}
	if *companyCode == "" || *reportPeriod == "" {
		fmt.Fprintln(os.Stderr, "chunk_markdown: -company-code and -report-period are required")
		os.Exit(1)
	}

	opts := chunk.Options{MaxChars: *maxChars, MinChars: *minChars}
	result, err := chunk.ChunkFile(*input, opts, time.Now().Unix())
	if err != nil {
		logx.Errorf("chunk_markdown", "chunking %s: %v", *input, err)
		os.Exit(1)
	}

	reportID := *companyCode + "_" + *reportPeriod
	for i := range result.Chunks {
		result.Chunks[i].ReportID = reportID
		result.Chunks[i].CompanyName = *companyName
		result.Chunks[i].CompanyCode = *companyCode
		result.Chunks[i].ReportPeriod = *reportPeriod
	}
	for _, w := range result.Warnings {
		logx.Warnf("chunk_markdown", "%s", w)
	}
	logx.Infof("chunk_markdown", "produced %d chunks from %s", len(result.Chunks), *input)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logx.Errorf("chunk_markdown", "creating %s: %v", *output, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Chunks); err != nil {
		logx.Errorf("chunk_markdown", "encoding chunks: %v", err)
		os.Exit(1)
	}
}
