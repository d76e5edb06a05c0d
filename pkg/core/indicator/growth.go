package indicator

import "github.com/earningscope/engine/pkg/core/findata"

// growthIndicator builds a Value carrying current/previous/growth_rate
// for a semantic field observed with and without history — the shape
// used for revenue, net_profit, net_profit_parent, contract_liability,
// and inventory growth. A missing current or previous value makes the
// indicator unavailable.
func growthIndicator(displayName, unit string, current, previous *float64) Value {
	if current == nil {
		return unavailable(displayName, unit, "current value missing")
	}
	if previous == nil {
		return unavailable(displayName, unit, "previous value missing")
	}
	v := available(displayName, unit, *current)
	v.Previous = previous
	v.GrowthRate = growthRate(current, previous)
	return v
}

// RevenueGrowth reports current/previous revenue and its growth rate.
func RevenueGrowth(current, previous findata.Statement) Value {
	return growthIndicator("营业收入增速", "元", get(current, "revenue"), get(previous, "revenue"))
}

// NetProfitGrowth reports current/previous net profit and its growth rate.
func NetProfitGrowth(current, previous findata.Statement) Value {
	return growthIndicator("净利润", "元", get(current, "net_profit"), get(previous, "net_profit"))
}

// NetProfitParentGrowth reports the parent-attributable net profit and its growth rate.
func NetProfitParentGrowth(current, previous findata.Statement) Value {
	return growthIndicator("归母净利润", "元", get(current, "net_profit_parent"), get(previous, "net_profit_parent"))
}

// ContractLiabilityGrowth reports contract liability (subscription-model
// businesses) and its change.
func ContractLiabilityGrowth(current, previous findata.Statement) Value {
	return growthIndicator("合同负债", "元", get(current, "contract_liability"), get(previous, "contract_liability"))
}

// InventoryGrowth reports inventory (hardware-model businesses) and its change.
func InventoryGrowth(current, previous findata.Statement) Value {
	return growthIndicator("存货", "元", get(current, "inventory"), get(previous, "inventory"))
}

// RDExpenseRatio reports R&D expense as a share of revenue, with the
// prior period's ratio attached as Previous for a point-change display.
func RDExpenseRatio(current, previous findata.Statement) Value {
	const name, unit = "研发费用率", "%"
	rd, rev := get(current, "rd_expense"), get(current, "revenue")
	if rd == nil || rev == nil {
		return unavailable(name, unit, "rd_expense or revenue missing")
	}
	ratio, ok := safeDiv(*rd*100, *rev)
	if !ok {
		return unavailable(name, unit, "revenue is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "rd_expense / revenue * 100"
	if prevRD, prevRev := get(previous, "rd_expense"), get(previous, "revenue"); prevRD != nil && prevRev != nil {
		if prevRatio, ok := safeDiv(*prevRD*100, *prevRev); ok {
			v.Previous = f(round2(prevRatio))
		}
	}
	return v
}

// SalesExpenseRatio reports sales/selling expense as a share of revenue.
func SalesExpenseRatio(current, previous findata.Statement) Value {
	const name, unit = "销售费用率", "%"
	se, rev := get(current, "sales_expense"), get(current, "revenue")
	if se == nil || rev == nil {
		return unavailable(name, unit, "sales_expense or revenue missing")
	}
	ratio, ok := safeDiv(*se*100, *rev)
	if !ok {
		return unavailable(name, unit, "revenue is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "sales_expense / revenue * 100"
	if prevSE, prevRev := get(previous, "sales_expense"), get(previous, "revenue"); prevSE != nil && prevRev != nil {
		if prevRatio, ok := safeDiv(*prevSE*100, *prevRev); ok {
			v.Previous = f(round2(prevRatio))
		}
	}
	return v
}
