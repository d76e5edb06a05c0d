// Package vectorstore adapts the Milvus wire protocol to a schema-fixed
// collection of VectorRecords: ensure/create-index/load on startup,
// batched insert with an explicit flush, and filtered cosine-similarity
// search.
package vectorstore

import (
	"context"

	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/ferr"
)

// Record is a Chunk plus its embedding, one-to-one, keyed by ChunkID.
type Record struct {
	Chunk     chunk.Chunk
	Embedding []float64
}

// Hit is one search result: the stored record plus its similarity score.
type Hit struct {
	Record chunk.Chunk
	Score  float64
}

// Store is the C3 contract. Implementations (the Milvus adapter, or
// MemStore for tests) must be safe for concurrent use by multiple
// generate_report/ingest_markdown invocations.
type Store interface {
	// EnsureCollection creates the collection, its HNSW/cosine index, and
	// loads it for search, idempotently.
	EnsureCollection(ctx context.Context) error

	// Insert writes chunks and their vectors. len(chunks) must equal
	// len(vectors); violation is a ferr.Precondition error. A flush is
	// issued before returning so subsequent searches observe the writes.
	// A record whose chunk_id already exists is not replaced: MemStore
	// appends, and MilvusStore issues a plain insert.
	Insert(ctx context.Context, chunks []chunk.Chunk, vectors [][]float64) error

	// Search runs a filtered ANN query. filterExpr uses the collection's
	// native predicate language (equality/conjunction over
	// company_code, report_period, chunk_type, company_name, report_id).
	Search(ctx context.Context, queryVector []float64, k int, filterExpr string) ([]Hit, error)

	// DeleteReport removes every record with the given report_id. A
	// non-existent report is not an error.
	DeleteReport(ctx context.Context, reportID string) error
}

const (
	CollectionName = "earnings_chunks"

	// HNSW construction parameters fixed by the wire protocol contract.
	IndexM              = 16
	IndexEFConstruction = 256
)

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	b := []byte(s)[:n]
	for len(b) > 0 {
		if b[len(b)-1]&0xC0 != 0x80 {
			break
		}
		b = b[:len(b)-1]
	}
	return string(b)
}

func validateLengths(chunks []chunk.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return ferr.New(ferr.Precondition, "vectorstore.Insert", nil)
	}
	return nil
}
