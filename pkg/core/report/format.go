package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/earningscope/engine/pkg/core/indicator"
)

// formatIndicatorBlock renders an indicator bucket into the compact
// textual block the analyze nodes hand the LLM: one line per indicator,
// sorted by name for deterministic output, nulls rendered as "N/A".
func formatIndicatorBlock(bucket map[string]indicator.Value) string {
	if len(bucket) == 0 {
		return ""
	}
	names := make([]string, 0, len(bucket))
	for name := range bucket {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(formatIndicatorLine(bucket[name]))
		b.WriteString("\n")
	}
	return b.String()
}

func formatIndicatorLine(v indicator.Value) string {
	valueStr := "N/A"
	if v.Available && v.Value != nil {
		valueStr = fmt.Sprintf("%.2f%s", *v.Value, v.Unit)
	}

	changeStr := "N/A"
	switch {
	case v.GrowthRate != nil:
		changeStr = fmt.Sprintf("%+.2f%%", *v.GrowthRate)
	case v.Previous != nil && v.Available && v.Value != nil:
		changeStr = fmt.Sprintf("较上期 %.2f%s", *v.Previous, v.Unit)
	}

	label := v.Name
	if label == "" {
		label = "unnamed_indicator"
	}
	return fmt.Sprintf("- %s: %s (变动 %s)", label, valueStr, changeStr)
}
