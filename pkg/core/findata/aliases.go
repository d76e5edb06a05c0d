package findata

import "encoding/json"

// semanticFields maps a canonical semantic field name to the set of wire
// keys the upstream has been observed to use for it. Unknown wire keys
// are dropped; canonical fields absent from the payload stay nil rather
// than zero.
var semanticFields = map[string][]string{
	// income statement
	"revenue":            {"revenue", "total_revenue", "营业收入"},
	"cost":               {"cost", "cogs", "营业成本"},
	"rd_expense":         {"rd_expense", "research_dev_expense", "研发费用"},
	"sales_expense":      {"sales_expense", "selling_expense", "销售费用"},
	"operating_income":   {"operating_income", "营业利润"},
	"interest_expense":   {"interest_expense", "利息费用"},
	"finance_expense":    {"finance_expense", "财务费用"},
	"income_before_tax":  {"income_before_tax", "利润总额"},
	"income_tax_expense": {"income_tax_expense", "所得税费用"},
	"net_profit":         {"net_profit", "net_income", "净利润"},
	"net_profit_parent":  {"net_profit_parent", "归母净利润"},

	// balance sheet
	"total_assets":       {"total_assets", "资产总计"},
	"total_liabilities":  {"total_liabilities", "负债合计"},
	"total_equity":       {"total_equity", "所有者权益合计"},
	"contract_liability": {"contract_liability", "合同负债"},
	"inventory":          {"inventory", "inventories", "存货"},
	"current_assets":      {"current_assets", "流动资产合计"},
	"current_liabilities":  {"current_liabilities", "流动负债合计"},
	"fixed_assets":         {"fixed_assets", "固定资产"},

	// interest-bearing liability items summed for financial_liability_ratio
	"short_term_borrowings":          {"short_term_borrowings", "短期借款"},
	"current_portion_long_term_debt": {"current_portion_long_term_debt", "一年内到期的非流动负债"},
	"long_term_borrowings":           {"long_term_borrowings", "长期借款"},
	"bonds_payable":                  {"bonds_payable", "应付债券"},
	"lease_liabilities":              {"lease_liabilities", "租赁负债"},
	"other_interest_bearing_debt":    {"other_interest_bearing_debt", "其他有息负债"},

	// investment-asset items subtracted from total_assets for operating_asset_turnover
	"trading_financial_assets":  {"trading_financial_assets", "交易性金融资产"},
	"available_for_sale_assets": {"available_for_sale_assets", "可供出售金融资产"},
	"long_term_equity_investment": {"long_term_equity_investment", "长期股权投资"},
	"investment_property":       {"investment_property", "投资性房地产"},

	// cash flow
	"net_operating_cash_flow": {"net_operating_cash_flow", "cash_from_operations", "经营活动产生的现金流量净额"},
	"net_investing_cash_flow": {"net_investing_cash_flow", "cash_from_investing"},
	"net_financing_cash_flow": {"net_financing_cash_flow", "cash_from_financing"},
}

// normalize converts a raw wire-format map into a Statement keyed by the
// canonical semantic field name, applying semanticFields in order so the
// first matching alias present wins.
func normalize(raw map[string]interface{}) Statement {
	out := make(Statement, len(semanticFields))
	for field, aliases := range semanticFields {
		for _, alias := range aliases {
			v, ok := raw[alias]
			if !ok || v == nil {
				continue
			}
			if fv, ok := toFloat(v); ok {
				out[field] = f(fv)
				break
			}
		}
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
