package retrieve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/embed"
	"github.com/earningscope/engine/pkg/core/vectorstore"
)

// fixedEmbedServer returns a deterministic 2-d embedding for each input
// text, looked up in vectors ({0, 0} for an unknown text), so tests can
// control similarity ordering.
func fixedEmbedServer(t *testing.T, vectors map[string][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		out := make([][]float64, len(req.Texts))
		for i, text := range req.Texts {
			v, ok := vectors[text]
			if !ok {
				v = []float64{0, 0}
			}
			out[i] = v
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": out,
			"model":      "test",
			"dimension":  2,
			"count":      len(out),
		})
	}))
}

func TestGetContext_ComposesThreeSections(t *testing.T) {
	srv := fixedEmbedServer(t, map[string][]float64{
		"2024-06-30":   {1, 0},
		"revenue risk": {0, 1},
	})
	defer srv.Close()
	embedder := embed.New(embed.Config{BaseURL: srv.URL})

	store := vectorstore.NewMemStore()
	ctx := context.Background()
	chunks := []chunk.Chunk{
		{ChunkID: "c1", ReportID: "X_2024-06-30", CompanyCode: "X", ReportPeriod: "2024-06-30", ChunkText: "current period text"},
		{ChunkID: "c2", ReportID: "X_2024-03-31", CompanyCode: "X", ReportPeriod: "2024-03-31", ChunkText: "prior period text"},
		{ChunkID: "c3", ReportID: "Y_2024-06-30", CompanyCode: "Y", ReportPeriod: "2024-06-30", ChunkText: "unrelated reference text"},
	}
	vectors := [][]float64{{1, 0}, {0.9, 0.1}, {0, 1}}
	if err := store.Insert(ctx, chunks, vectors); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	r := New(store, embedder)
	out, err := r.GetContext(ctx, "Company X", "X", "2024-06-30", "revenue risk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "当期数据") {
		t.Fatal("expected a current-period section heading")
	}
	if !strings.Contains(out, "历史对比") {
		t.Fatal("expected a historical-comparison section heading")
	}
	if !strings.Contains(out, "相关参考") {
		t.Fatal("expected a related-reference section heading")
	}
	if !strings.Contains(out, "current period text") {
		t.Fatal("expected current period chunk text present")
	}
	if !strings.Contains(out, "prior period text") {
		t.Fatal("expected prior period chunk text present")
	}
}

func TestGetContext_NoQueryOmitsReferenceSection(t *testing.T) {
	srv := fixedEmbedServer(t, map[string][]float64{"2024-06-30": {1, 0}})
	defer srv.Close()
	embedder := embed.New(embed.Config{BaseURL: srv.URL})
	store := vectorstore.NewMemStore()
	ctx := context.Background()

	r := New(store, embedder)
	out, err := r.GetContext(ctx, "Company X", "X", "2024-06-30", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "相关参考") {
		t.Fatal("expected no reference section when query is empty")
	}
}

func TestTruncate_MarksSuffixWhenOverCap(t *testing.T) {
	long := strings.Repeat("x", MaxContextChars+500)
	got := truncate(long, MaxContextChars)
	if len([]rune(got)) != MaxContextChars {
		t.Fatalf("expected truncated length %d, got %d", MaxContextChars, len([]rune(got)))
	}
	if !strings.HasSuffix(got, truncationSuffix) {
		t.Fatal("expected truncation suffix marker")
	}
}

func TestTruncate_LeavesShortTextUnchanged(t *testing.T) {
	short := "hello"
	if got := truncate(short, MaxContextChars); got != short {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}
