package indicator

import "github.com/earningscope/engine/pkg/core/findata"

// DuPont decomposes ROE(%) = net_profit_margin(%) * asset_turnover * equity_multiplier.
// All three components are independently nullable; Identity is computed
// only when all three, plus ROE itself, are available.
type DuPont struct {
	NetProfitMargin Value
	AssetTurnover   Value
	EquityMultiplier Value
	ReturnOnEquity  Value

	// IdentityError is |roe - npm*at*em| when all four are available,
	// nil otherwise. Expected to be within 0.01.
	IdentityError *float64
}

func netProfitMargin(income findata.Statement) Value {
	const name, unit = "净利率", "%"
	np, rev := get(income, "net_profit"), get(income, "revenue")
	if np == nil || rev == nil {
		return unavailable(name, unit, "net_profit or revenue missing")
	}
	ratio, ok := safeDiv(*np*100, *rev)
	if !ok {
		return unavailable(name, unit, "revenue is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "net_profit / revenue * 100"
	return v
}

func assetTurnover(income, balance, previousBalance findata.Statement, reportPeriod string) Value {
	const name, unit = "资产周转率", "次"
	rev := get(income, "revenue")
	if rev == nil {
		return unavailable(name, unit, "revenue missing")
	}
	avgAssets, ok := periodAverage(get(balance, "total_assets"), get(previousBalance, "total_assets"))
	if !ok {
		return unavailable(name, unit, "total_assets missing")
	}
	factor, annualized := annualizationFactor(reportPeriod)
	ratio, ok := safeDiv(*rev*factor, avgAssets)
	if !ok {
		return unavailable(name, unit, "average total_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "revenue / avg(total_assets)"
	v.Annualized = annualized
	return v
}

func equityMultiplier(balance, previousBalance findata.Statement) Value {
	const name, unit = "权益乘数", "倍"
	avgAssets, okA := periodAverage(get(balance, "total_assets"), get(previousBalance, "total_assets"))
	avgEquity, okE := periodAverage(get(balance, "total_equity"), get(previousBalance, "total_equity"))
	if !okA || !okE {
		return unavailable(name, unit, "total_assets or total_equity missing")
	}
	ratio, ok := safeDiv(avgAssets, avgEquity)
	if !ok {
		return unavailable(name, unit, "average total_equity is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "avg(total_assets) / avg(total_equity)"
	return v
}

// ComputeDuPont decomposes ROE via net_profit_margin * asset_turnover * equity_multiplier.
func ComputeDuPont(income, balance, previousBalance findata.Statement, reportPeriod string) DuPont {
	d := DuPont{
		NetProfitMargin:  netProfitMargin(income),
		AssetTurnover:    assetTurnover(income, balance, previousBalance, reportPeriod),
		EquityMultiplier: equityMultiplier(balance, previousBalance),
		ReturnOnEquity:   ReturnOnEquity(income, balance, previousBalance, reportPeriod),
	}
	if d.NetProfitMargin.Available && d.AssetTurnover.Available && d.EquityMultiplier.Available && d.ReturnOnEquity.Available {
		implied := *d.NetProfitMargin.Value * *d.AssetTurnover.Value * *d.EquityMultiplier.Value
		diff := *d.ReturnOnEquity.Value - implied
		if diff < 0 {
			diff = -diff
		}
		d.IdentityError = f(diff)
	}
	return d
}
