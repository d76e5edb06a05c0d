package vectorstore

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/earningscope/engine/pkg/core/chunk"
)

// MemStore is an in-process Store implementation backing unit tests that
// don't require a live Milvus instance. Filter expressions support only
// the conjunction-of-equalities subset Search actually needs.
type MemStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) EnsureCollection(ctx context.Context) error { return nil }

func (m *MemStore) Insert(ctx context.Context, chunks []chunk.Chunk, vectors [][]float64) error {
	if err := validateLengths(chunks, vectors); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range chunks {
		c.ChunkText = truncateBytes(c.ChunkText, chunk.MaxChunkTextBytes)
		c.Title = truncateBytes(c.Title, chunk.MaxTitleBytes)
		m.records = append(m.records, Record{Chunk: c, Embedding: vectors[i]})
	}
	return nil
}

func (m *MemStore) Search(ctx context.Context, queryVector []float64, k int, filterExpr string) ([]Hit, error) {
	preds := parseFilterExpr(filterExpr)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	for _, r := range m.records {
		if !preds.matches(r.Chunk) {
			continue
		}
		hits = append(hits, Hit{Record: r.Chunk, Score: cosineSimilarity(queryVector, r.Embedding)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.ChunkIndex < hits[j].Record.ChunkIndex
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *MemStore) DeleteReport(ctx context.Context, reportID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.Chunk.ReportID != reportID {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// equalityPredicates is the conjunction-of-equalities subset of the
// native filter language this adapter issues (see pkg/core/retrieve).
type equalityPredicates map[string]string

func (p equalityPredicates) matches(c chunk.Chunk) bool {
	for field, want := range p {
		var got string
		switch field {
		case fieldCompanyCode:
			got = c.CompanyCode
		case fieldReportPeriod:
			got = c.ReportPeriod
		case fieldChunkType:
			got = string(c.ChunkType)
		case fieldCompanyName:
			got = c.CompanyName
		case fieldReportID:
			got = c.ReportID
		default:
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

// parseFilterExpr parses `field == "value" AND field2 == "value2"`
// expressions, the only shape this adapter's callers ever construct.
func parseFilterExpr(expr string) equalityPredicates {
	preds := equalityPredicates{}
	if strings.TrimSpace(expr) == "" {
		return preds
	}
	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		parts := strings.SplitN(clause, "==", 2)
		if len(parts) != 2 {
			continue
		}
		field := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		preds[field] = value
	}
	return preds
}
