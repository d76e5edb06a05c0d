package vectorstore

import (
	"context"
	"testing"

	"github.com/earningscope/engine/pkg/core/chunk"
)

func TestMemStore_FilteredANNSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	c1 := chunk.Chunk{ChunkID: "a1", ReportID: "X_2024-03-31", CompanyCode: "X", ReportPeriod: "2024-03-31", ChunkText: "t", ChunkIndex: 0}
	c2 := chunk.Chunk{ChunkID: "a2", ReportID: "X_2024-06-30", CompanyCode: "X", ReportPeriod: "2024-06-30", ChunkText: "t", ChunkIndex: 0}
	c3 := chunk.Chunk{ChunkID: "a3", ReportID: "X_2024-06-30", CompanyCode: "X", ReportPeriod: "2024-06-30", ChunkText: "t", ChunkIndex: 1}

	if err := store.Insert(ctx, []chunk.Chunk{c1, c2, c3}, [][]float64{{1, 0}, {1, 0}, {0.9, 0.1}}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	filter := NewFilter().CompanyCode("X").ReportPeriod("2024-06-30").String()
	hits, err := store.Search(ctx, []float64{1, 0}, 5, filter)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for period 2024-06-30, got %d", len(hits))
	}
	for _, h := range hits {
		if h.Record.ReportPeriod != "2024-06-30" {
			t.Fatalf("filter leaked a record from another period: %+v", h.Record)
		}
	}
	if hits[0].Score < hits[1].Score {
		t.Fatal("expected hits ordered by descending similarity")
	}
}

func TestMemStore_DeleteReportThenSearchIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	c := chunk.Chunk{ChunkID: "a1", ReportID: "X_2024-03-31", CompanyCode: "X", ReportPeriod: "2024-03-31", ChunkText: "t"}
	if err := store.Insert(ctx, []chunk.Chunk{c}, [][]float64{{1, 0}}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.DeleteReport(ctx, "X_2024-03-31"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	hits, err := store.Search(ctx, []float64{1, 0}, 5, NewFilter().ReportID("X_2024-03-31").String())
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits after delete, got %d", len(hits))
	}
}

func TestMemStore_InsertLengthMismatchIsPrecondition(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	err := store.Insert(ctx, []chunk.Chunk{{ChunkID: "a"}}, [][]float64{})
	if err == nil {
		t.Fatal("expected a precondition error for mismatched lengths")
	}
}
