// Package retrieve composes the retrieval-augmented context handed to
// the analysis and report-generation prompts: a current-period section,
// a historical-comparison section grouped by prior periods, and an
// optional query-driven reference section — concatenated under heading
// markers and capped to a fixed character budget.
package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/earningscope/engine/pkg/core/embed"
	"github.com/earningscope/engine/pkg/core/ferr"
	"github.com/earningscope/engine/pkg/core/vectorstore"
)

const (
	currentPeriodK  = 5
	historicalK     = 3
	referenceK      = 3
	maxPriorPeriods = 2

	// MaxContextChars bounds the total composed context handed to a
	// generation prompt.
	MaxContextChars = 2000

	truncationSuffix = "...[truncated]"
)

// Retriever composes labelled context sections from a chunk vector
// store, embedding queries with the same model used at ingestion time.
type Retriever struct {
	store    vectorstore.Store
	embedder *embed.Client
}

func New(store vectorstore.Store, embedder *embed.Client) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// GetContext composes up to three labelled sections for company/period,
// optionally adding a query-driven "related reference" section when
// query is non-empty.
func (r *Retriever) GetContext(ctx context.Context, companyName, companyCode, reportPeriod, query string) (string, error) {
	var sections []string

	currentSection, err := r.currentPeriodSection(ctx, companyCode, reportPeriod)
	if err != nil {
		return "", err
	}
	if currentSection != "" {
		sections = append(sections, currentSection)
	}

	historicalSection, err := r.historicalSection(ctx, companyCode, reportPeriod)
	if err != nil {
		return "", err
	}
	if historicalSection != "" {
		sections = append(sections, historicalSection)
	}

	if query != "" {
		referenceSection, err := r.referenceSection(ctx, query)
		if err != nil {
			return "", err
		}
		if referenceSection != "" {
			sections = append(sections, referenceSection)
		}
	}

	composed := strings.Join(sections, "\n\n")
	return truncate(composed, MaxContextChars), nil
}

func (r *Retriever) currentPeriodSection(ctx context.Context, companyCode, reportPeriod string) (string, error) {
	embedding, err := r.embedOne(ctx, reportPeriod)
	if err != nil {
		return "", err
	}
	filter := vectorstore.NewFilter().CompanyCode(companyCode).ReportPeriod(reportPeriod).String()
	hits, err := r.store.Search(ctx, embedding, currentPeriodK, filter)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## 当期数据\n")
	for _, h := range hits {
		b.WriteString(h.Record.ChunkText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// historicalSection retrieves chunks from prior periods of the same
// company, grouped by period, newest-first, up to maxPriorPeriods.
func (r *Retriever) historicalSection(ctx context.Context, companyCode, reportPeriod string) (string, error) {
	embedding, err := r.embedOne(ctx, reportPeriod)
	if err != nil {
		return "", err
	}
	filter := vectorstore.NewFilter().CompanyCode(companyCode).String()
	hits, err := r.store.Search(ctx, embedding, historicalK*(maxPriorPeriods+1), filter)
	if err != nil {
		return "", err
	}

	byPeriod := map[string][]vectorstore.Hit{}
	for _, h := range hits {
		if h.Record.ReportPeriod == reportPeriod {
			continue
		}
		byPeriod[h.Record.ReportPeriod] = append(byPeriod[h.Record.ReportPeriod], h)
	}
	if len(byPeriod) == 0 {
		return "", nil
	}

	periods := make([]string, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	if len(periods) > maxPriorPeriods {
		periods = periods[:maxPriorPeriods]
	}

	var b strings.Builder
	b.WriteString("## 历史对比\n")
	for _, period := range periods {
		hitsForPeriod := byPeriod[period]
		if len(hitsForPeriod) > historicalK {
			hitsForPeriod = hitsForPeriod[:historicalK]
		}
		b.WriteString(fmt.Sprintf("### %s\n", period))
		for _, h := range hitsForPeriod {
			b.WriteString(h.Record.ChunkText)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (r *Retriever) referenceSection(ctx context.Context, query string) (string, error) {
	embedding, err := r.embedOne(ctx, query)
	if err != nil {
		return "", err
	}
	hits, err := r.store.Search(ctx, embedding, referenceK, "")
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## 相关参考\n")
	for _, h := range hits {
		b.WriteString(h.Record.ChunkText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (r *Retriever) embedOne(ctx context.Context, text string) ([]float64, error) {
	vectors, err := r.embedder.Encode(ctx, []string{text}, 1)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, ferr.New(ferr.Internal, "retrieve.embedOne", fmt.Errorf("expected 1 embedding, got %d", len(vectors)))
	}
	return vectors[0], nil
}

// truncate caps s to maxChars, appending a suffix marker on the cut
// copy when truncation occurs. Cuts on a rune boundary.
func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	cut := maxChars - len([]rune(truncationSuffix))
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + truncationSuffix
}
