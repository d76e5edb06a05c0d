package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/earningscope/engine/pkg/core/ferr"
)

func TestChunkMarkdown_DenseChunkIndex(t *testing.T) {
	md := "# Overview\n\nFirst paragraph about the business.\n\n## Risks\n\nSome risk discussion here.\n\n" +
		strings.Repeat("More risk text. ", 40)
	res, err := ChunkMarkdown(md, "f.md", Options{MaxChars: 120, MinChars: 20}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for i, c := range res.Chunks {
		if c.ChunkIndex != i {
			t.Fatalf("chunk_index gap at position %d: got %d", i, c.ChunkIndex)
		}
	}
}

func TestChunkMarkdown_ByteCaps(t *testing.T) {
	md := "# H\n\n" + strings.Repeat("数据充分披露的长段落内容。", 2000)
	res, err := ChunkMarkdown(md, "f.md", Options{MaxChars: 50000, MinChars: 10}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range res.Chunks {
		if len(c.ChunkText) == 0 || len(c.ChunkText) > MaxChunkTextBytes {
			t.Fatalf("chunk_text length %d out of bounds", len(c.ChunkText))
		}
		if !utf8.ValidString(c.ChunkText) {
			t.Fatal("chunk_text is not valid UTF-8")
		}
	}
}

func TestChunkMarkdown_TablePreservation(t *testing.T) {
	md := "# H1\n\ntext\n\n<table><tr><td>a</td></tr><tr><td>b</td></tr></table>\n\nmore text"
	res, err := ChunkMarkdown(md, "f.md", Options{MaxChars: 200, MinChars: 5}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chunks) != 3 {
		t.Fatalf("expected exactly 3 chunks, got %d: %+v", len(res.Chunks), res.Chunks)
	}
	if res.Chunks[1].ChunkType != TypeTable {
		t.Fatalf("expected middle chunk to be type table, got %s", res.Chunks[1].ChunkType)
	}
	if strings.Contains(res.Chunks[1].ChunkText, "H1") {
		t.Fatal("table chunk must not have heading composed into it")
	}
	if strings.Count(res.Chunks[1].ChunkText, "<table") != 1 || strings.Count(res.Chunks[1].ChunkText, "</table>") != 1 {
		t.Fatal("table chunk must contain exactly one table span")
	}
}

func TestChunkMarkdown_BoundaryAtExactMaxChars(t *testing.T) {
	para := strings.Repeat("a", 100)
	res, err := ChunkMarkdown(para, "f.md", Options{MaxChars: 100, MinChars: 10}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chunks) != 1 {
		t.Fatalf("exactly-max-chars paragraph should yield one chunk, got %d", len(res.Chunks))
	}

	longer := strings.Repeat("a", 101)
	res2, err := ChunkMarkdown(longer, "f.md", Options{MaxChars: 100, MinChars: 10}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res2.Chunks) < 1 {
		t.Fatal("expected at least one chunk for the longer paragraph")
	}
}

func TestChunkMarkdown_NoHeadingsYieldsZeroTitleLevel(t *testing.T) {
	md := "Just a plain paragraph with no structure at all."
	res, err := ChunkMarkdown(md, "f.md", Options{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range res.Chunks {
		if c.TitleLevel != 0 || c.Title != "" {
			t.Fatalf("expected title_level 0 and empty title, got %d %q", c.TitleLevel, c.Title)
		}
	}
}

func TestChunkMarkdown_IdempotentRoundTrip(t *testing.T) {
	md := "# A\n\nSome content.\n\n## B\n\nMore content that is reasonably long for packing."
	opts := Options{MaxChars: 80, MinChars: 10}
	r1, err := ChunkMarkdown(md, "f.md", opts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := ChunkMarkdown(md, "f.md", opts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r1.Chunks) != len(r2.Chunks) {
		t.Fatalf("chunk count differs across runs: %d vs %d", len(r1.Chunks), len(r2.Chunks))
	}
	for i := range r1.Chunks {
		if r1.Chunks[i].ChunkText != r2.Chunks[i].ChunkText || r1.Chunks[i].ChunkIndex != r2.Chunks[i].ChunkIndex {
			t.Fatalf("chunk %d differs across runs", i)
		}
	}
}

func TestChunkMarkdown_HeadingOnlyDegenerateInput(t *testing.T) {
	md := "# Company Overview\n\n## Subsection"
	res, err := ChunkMarkdown(md, "f.md", Options{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chunks) != 1 {
		t.Fatalf("expected exactly one chunk for heading-only input, got %d", len(res.Chunks))
	}
	if res.Chunks[0].ChunkType != TypeOther {
		t.Fatalf("expected chunk_type other, got %s", res.Chunks[0].ChunkType)
	}
}

func TestChunkMarkdown_MalformedFenceWarns(t *testing.T) {
	md := "# H\n\n```go\nfunc main() {}\n"
	res, err := ChunkMarkdown(md, "f.md", Options{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "fenced code") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning about the unterminated fenced code block")
	}
}

func TestChunkMarkdown_InvalidUTF8FailsFast(t *testing.T) {
	bad := "# Heading\n\n\xff\xfe not valid utf-8"
	_, err := ChunkMarkdown(bad, "f.md", Options{}, 0)
	if err == nil {
		t.Fatal("expected an error for invalid UTF-8 input")
	}
	if !ferr.Is(err, ferr.InvalidInput) {
		t.Fatalf("expected ferr.InvalidInput, got %v", err)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	rules := DefaultRules()
	got := Classify(rules, []string{"管理层讨论与分析"}, "营业收入情况", false)
	if got != TypeManagementDiscussion {
		t.Fatalf("expected management_discussion to win first, got %s", got)
	}
	if Classify(rules, nil, "<table><tr></tr></table>", true) != TypeTable {
		t.Fatal("table flag must always win regardless of keyword content")
	}
}

func TestSplitSentences_DigitLookaheadException(t *testing.T) {
	got := splitSentences("Revenue grew 3.14 percent this quarter. Costs fell.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(got), got)
	}
	if strings.Contains(got[0], "14 percent") == false {
		t.Fatalf("period before a digit must not split the sentence: %+v", got)
	}
}
