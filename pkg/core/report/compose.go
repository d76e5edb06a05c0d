package report

import "strings"

// reportTitleSuffix matches the fixed skeleton the original Python system
// emitted (`src/nodes/report_nodes.py`): a top-level heading of
// "{company} {period} 分析报告" ahead of whatever section body the model
// produced. Spec.md §4.8 only names the four required section headings
// and leaves the rest of the layout unspecified; we keep the original's
// title convention rather than leaving it to model discretion.
const reportTitleSuffix = "分析报告"

// ComposeReport prepends the fixed title heading to body, unless body
// already opens with a top-level heading of its own (a model that echoes
// the instructed skeleton verbatim should not get a second title stacked
// on top of the first).
func ComposeReport(companyName, reportPeriod, body string) string {
	body = strings.TrimLeft(body, "\n")
	if strings.HasPrefix(body, "# ") {
		return body
	}
	title := "# " + companyName + " " + reportPeriod + " " + reportTitleSuffix
	return title + "\n\n" + body
}
