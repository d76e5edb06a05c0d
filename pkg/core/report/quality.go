package report

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/earningscope/engine/pkg/core/workflow"
)

// requiredSections are matched as exact substrings against the full
// report text, in the order penalties are documented.
var requiredSections = []string{"核心结论", "分项分析", "综合判断", "投资建议"}

const (
	minReportLength       = 500
	minNumericTokens      = 5
	maxRegenerationRounds = 2
)

// qualityVerdict is the pure result of scoring one report: no engine or
// I/O concerns, so it can be tested and reasoned about in isolation from
// the back-edge that consumes it.
type qualityVerdict struct {
	Score  int
	Issues []string
}

// scoreReport runs the programmatic (no-LLM) quality gate: starts at
// 100, deducts fixed penalties for a short report, each missing required
// section, and too few numeric tokens, then clamps to [0, 100].
func scoreReport(reportText string) qualityVerdict {
	score := 100
	var issues []string

	if len(reportText) < minReportLength {
		score -= 20
		issues = append(issues, fmt.Sprintf("report length %d below minimum %d", len(reportText), minReportLength))
	}

	for _, section := range requiredSections {
		if !strings.Contains(reportText, section) {
			score -= 15
			issues = append(issues, fmt.Sprintf("missing required section %q", section))
		}
	}

	if n := countNumericTokens(reportText); n < minNumericTokens {
		score -= 10
		issues = append(issues, fmt.Sprintf("only %d numeric tokens, need at least %d", n, minNumericTokens))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return qualityVerdict{Score: score, Issues: issues}
}

// countNumericTokens counts maximal runs of digits (with an optional
// internal '.' or ',' as part of the same token, e.g. "12.5" or
// "1,234" count once) anywhere in the text.
func countNumericTokens(s string) int {
	count := 0
	inToken := false
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsDigit(r) {
			if !inToken {
				count++
				inToken = true
			}
			continue
		}
		if (r == '.' || r == ',') && inToken && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		inToken = false
	}
	return count
}

// headingTexts walks a goldmark-parsed document and returns the text of
// every heading node, using the AST text-leaf segments rather than any
// convenience accessor.
func headingTexts(source []byte) []string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		out = append(out, b.String())
		return ast.WalkSkipChildren, nil
	})
	return out
}

// QualityCheck builds the quality_check node: scores the current
// final_report, records a non-penalty-bearing warning when a required
// section appears only as body text rather than an actual heading, and
// decides whether generate_report must run again.
func QualityCheck(deps Deps) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		if s.HasErrors() {
			s.ShouldRegenerate = false
			return s, nil
		}

		verdict := scoreReport(s.FinalReport)
		s.ReportQualityScore = verdict.Score
		for _, issue := range verdict.Issues {
			s = s.WithWarning("quality_check: " + issue)
		}

		headings := headingTexts([]byte(s.FinalReport))
		for _, section := range requiredSections {
			if !strings.Contains(s.FinalReport, section) {
				continue
			}
			found := false
			for _, h := range headings {
				if strings.Contains(h, section) {
					found = true
					break
				}
			}
			if !found {
				s = s.WithWarning(fmt.Sprintf("quality_check: %q present but not rendered as a heading", section))
			}
		}

		s = s.WithTool(workflow.NodeQualityCheck)
		if verdict.Score < 60 && s.RegenerationCount < maxRegenerationRounds {
			s.RegenerationCount++
			s.ShouldRegenerate = true
		} else {
			s.ShouldRegenerate = false
		}
		return s, nil
	}
}
