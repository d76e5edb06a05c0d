// Command ingest_markdown chunks a Markdown filing, embeds every chunk,
// and inserts the resulting vectors into the configured vector store.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/embed"
	"github.com/earningscope/engine/pkg/core/logx"
	"github.com/earningscope/engine/pkg/core/vectorstore"
)

func main() {
	input := flag.String("input", "", "path to the Markdown filing to ingest")
	companyName := flag.String("company-name", "", "company display name")
	companyCode := flag.String("company-code", "", "company code")
	reportPeriod := flag.String("report-period", "", "report period, e.g. 2024-12-31")
	embedURL := flag.String("embed-url", "http://localhost:8091", "base URL of the embedding service")
	milvusAddr := flag.String("milvus-addr", "", "Milvus gRPC address (host:port); empty skips persistence and only reports what would be inserted")
	batchSize := flag.Int("batch-size", 16, "chunks per embedding request")
	dimension := flag.Int("dimension", 0, "embedding dimension; 0 probes the embedding service's /health endpoint")
	timeout := flag.Duration("timeout", 60*time.Second, "overall ingestion timeout")
	flag.Parse()

	if *input == "" || *companyCode == "" || *reportPeriod == "" {
		fmt.Fprintln(os.Stderr, "ingest_markdown: -input, -company-code, and -report-period are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := chunk.ChunkFile(*input, chunk.Options{}, time.Now().Unix())
	if err != nil {
		logx.Errorf("ingest_markdown", "chunking %s: %v", *input, err)
		os.Exit(1)
	}
	reportID := *companyCode + "_" + *reportPeriod
	chunks := result.Chunks
	for i := range chunks {
		chunks[i].ReportID = reportID
		chunks[i].CompanyName = *companyName
		chunks[i].CompanyCode = *companyCode
		chunks[i].ReportPeriod = *reportPeriod
	}
	for _, w := range result.Warnings {
		logx.Warnf("ingest_markdown", "%s", w)
	}
	logx.Infof("ingest_markdown", "chunked %s into %d chunks", *input, len(chunks))

	embedder := embed.New(embed.Config{BaseURL: *embedURL, HTTPClient: &http.Client{Timeout: *timeout}})
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ChunkText
	}
	vectors, err := embedder.Encode(ctx, texts, *batchSize)
	if err != nil {
		logx.Errorf("ingest_markdown", "embedding chunks: %v", err)
		os.Exit(1)
	}
	logx.Infof("ingest_markdown", "embedded %d chunks (dimension=%d)", len(vectors), embedder.Dimension())

	store, err := buildStore(ctx, *milvusAddr, *dimension, embedder)
	if err != nil {
		logx.Errorf("ingest_markdown", "building vector store: %v", err)
		os.Exit(1)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		logx.Errorf("ingest_markdown", "ensuring collection: %v", err)
		os.Exit(1)
	}
	if err := store.Insert(ctx, chunks, vectors); err != nil {
		logx.Errorf("ingest_markdown", "inserting chunks: %v", err)
		os.Exit(1)
	}
	logx.Infof("ingest_markdown", "inserted %d chunks for report_id=%s", len(chunks), reportID)
}

func buildStore(ctx context.Context, milvusAddr string, dimension int, embedder *embed.Client) (vectorstore.Store, error) {
	if milvusAddr == "" {
		logx.Warnf("ingest_markdown", "no -milvus-addr given, using an in-memory store (results are discarded on exit)")
		return vectorstore.NewMemStore(), nil
	}
	if dimension <= 0 {
		if err := embedder.Health(ctx); err != nil {
			return nil, fmt.Errorf("probing embedding dimension via /health: %w", err)
		}
		dimension = embedder.Dimension()
	}
	c, err := mclient.NewGrpcClient(ctx, milvusAddr)
	if err != nil {
		return nil, fmt.Errorf("connecting to milvus at %s: %w", milvusAddr, err)
	}
	return vectorstore.NewMilvusStore(c, dimension), nil
}
