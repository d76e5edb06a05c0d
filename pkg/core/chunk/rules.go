package chunk

import "strings"

// Rule pairs a chunk type with the keywords that trigger it. Rules are
// evaluated in slice order, first match wins; the table chunk_type is
// always decided before any Rule runs (an explicit <table> span check).
type Rule struct {
	Type     Type
	Keywords []string
}

// ClassificationRules is the ordered keyword table driving Classify.
// Swapping it for an industry-specific table never requires touching the
// parser or packer — only the rules passed to Classify change.
type ClassificationRules []Rule

// DefaultRules reproduces the keyword table the ingestion pipeline has
// always used, in its required evaluation order.
func DefaultRules() ClassificationRules {
	return ClassificationRules{
		{TypeManagementDiscussion, []string{"管理层讨论", "经营情况", "分析", "讨论与分析"}},
		{TypeFinancialAnalysis, []string{"财务状况", "利润", "成本", "费用", "毛利", "收入", "财务"}},
		{TypeCashflow, []string{"现金流", "经营活动产生", "投资活动", "筹资活动"}},
		{TypeRisk, []string{"风险", "重大事项", "诉讼", "承诺", "不确定性"}},
		{TypeGovernance, []string{"治理", "董事会", "监事会", "内控", "审计"}},
		{TypeBusinessOverview, []string{"主营业务", "行业情况", "产品", "市场", "区域"}},
		{TypeSummary, []string{"重要提示", "摘要"}},
		{TypeNotes, []string{"附注", "补充资料"}},
	}
}

// Classify applies rules to titlePath ∪ chunkText (lowercased), returning
// the first matching Type or TypeOther. isTable short-circuits to
// TypeTable regardless of rules, matching the "table wins first" contract.
func Classify(rules ClassificationRules, titlePath []string, chunkText string, isTable bool) Type {
	if isTable {
		return TypeTable
	}
	corpus := strings.ToLower(strings.Join(titlePath, " ") + " " + chunkText)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(corpus, strings.ToLower(kw)) {
				return r.Type
			}
		}
	}
	return TypeOther
}
