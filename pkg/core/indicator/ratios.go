package indicator

import "github.com/earningscope/engine/pkg/core/findata"

// financialLiabilityFields are the interest-bearing balance-sheet items
// summed for financial_liability_ratio. At least one must be present to
// compute the ratio at all.
var financialLiabilityFields = []string{
	"short_term_borrowings",
	"current_portion_long_term_debt",
	"long_term_borrowings",
	"bonds_payable",
	"lease_liabilities",
	"other_interest_bearing_debt",
}

// investmentAssetFields are subtracted from total_assets to derive the
// operating-asset base for operating_asset_turnover.
var investmentAssetFields = []string{
	"trading_financial_assets",
	"available_for_sale_assets",
	"long_term_equity_investment",
	"investment_property",
}

func get(s findata.Statement, key string) *float64 {
	if s == nil {
		return nil
	}
	return s[key]
}

// sumPresent adds together whichever of the named fields are non-nil,
// reporting whether at least one was present.
func sumPresent(s findata.Statement, fields []string) (float64, bool) {
	var total float64
	found := false
	for _, field := range fields {
		if v := get(s, field); v != nil {
			total += *v
			found = true
		}
	}
	return total, found
}

// GrossMargin = (revenue - cost) / revenue * 100.
func GrossMargin(income findata.Statement) Value {
	const name, unit = "毛利率", "%"
	rev, cost := get(income, "revenue"), get(income, "cost")
	if rev == nil || cost == nil {
		return unavailable(name, unit, "revenue or cost missing")
	}
	ratio, ok := safeDiv((*rev-*cost)*100, *rev)
	if !ok {
		return unavailable(name, unit, "revenue is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "(revenue - cost) / revenue * 100"
	return v
}

// CoreProfitMargin = operating_income / revenue * 100.
func CoreProfitMargin(income findata.Statement) Value {
	const name, unit = "核心利润率", "%"
	rev, opInc := get(income, "revenue"), get(income, "operating_income")
	if rev == nil || opInc == nil {
		return unavailable(name, unit, "revenue or operating_income missing")
	}
	ratio, ok := safeDiv(*opInc*100, *rev)
	if !ok {
		return unavailable(name, unit, "revenue is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "operating_income / revenue * 100"
	return v
}

// EBIT returns total_profit + interest_expense, falling back to
// finance_expense when interest_expense is absent — flagged Approximate
// in that case, matching the fallback the source marks approximate.
func EBIT(income findata.Statement) (value float64, ok bool, approximate bool) {
	ibt := get(income, "income_before_tax")
	if ibt == nil {
		return 0, false, false
	}
	if ie := get(income, "interest_expense"); ie != nil {
		return *ibt + *ie, true, false
	}
	if fe := get(income, "finance_expense"); fe != nil {
		return *ibt + *fe, true, true
	}
	return *ibt, true, true
}

// ReturnOnTotalAssets = EBIT / average(total_assets) * 100, annualizing
// EBIT's flow component when reportPeriod names an interim quarter.
func ReturnOnTotalAssets(income, balance, previousBalance findata.Statement, reportPeriod string) Value {
	const name, unit = "总资产报酬率", "%"
	ebit, ok, approx := EBIT(income)
	if !ok {
		return unavailable(name, unit, "income_before_tax missing")
	}
	avgAssets, ok := periodAverage(get(balance, "total_assets"), get(previousBalance, "total_assets"))
	if !ok {
		return unavailable(name, unit, "total_assets missing")
	}
	factor, annualized := annualizationFactor(reportPeriod)
	numerator := ebit * factor
	ratio, ok := safeDiv(numerator*100, avgAssets)
	if !ok {
		return unavailable(name, unit, "average total_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "EBIT / avg(total_assets) * 100"
	v.Annualized = annualized
	v.Approximate = approx
	v.Intermediates = map[string]float64{"ebit": ebit, "avg_total_assets": avgAssets}
	return v
}

// ReturnOnEquity = net_profit / average(total_equity) * 100, annualized.
func ReturnOnEquity(income, balance, previousBalance findata.Statement, reportPeriod string) Value {
	const name, unit = "净资产收益率", "%"
	np := get(income, "net_profit")
	if np == nil {
		return unavailable(name, unit, "net_profit missing")
	}
	avgEquity, ok := periodAverage(get(balance, "total_equity"), get(previousBalance, "total_equity"))
	if !ok {
		return unavailable(name, unit, "total_equity missing")
	}
	factor, annualized := annualizationFactor(reportPeriod)
	ratio, ok := safeDiv(*np*factor*100, avgEquity)
	if !ok {
		return unavailable(name, unit, "average total_equity is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "net_profit / avg(total_equity) * 100"
	v.Annualized = annualized
	v.Intermediates = map[string]float64{"avg_total_equity": avgEquity}
	return v
}

// InventoryTurnover = cost / average(inventory), annualized.
func InventoryTurnover(income, balance, previousBalance findata.Statement, reportPeriod string) Value {
	const name, unit = "存货周转率", "次"
	cost := get(income, "cost")
	if cost == nil {
		return unavailable(name, unit, "cost missing")
	}
	avgInv, ok := periodAverage(get(balance, "inventory"), get(previousBalance, "inventory"))
	if !ok {
		return unavailable(name, unit, "inventory missing")
	}
	factor, annualized := annualizationFactor(reportPeriod)
	ratio, ok := safeDiv(*cost*factor, avgInv)
	if !ok {
		return unavailable(name, unit, "average inventory is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "cost / avg(inventory)"
	v.Annualized = annualized
	return v
}

// FixedAssetTurnover = revenue / average(fixed_assets), annualized.
func FixedAssetTurnover(income, balance, previousBalance findata.Statement, reportPeriod string) Value {
	const name, unit = "固定资产周转率", "次"
	rev := get(income, "revenue")
	if rev == nil {
		return unavailable(name, unit, "revenue missing")
	}
	avgFixed, ok := periodAverage(get(balance, "fixed_assets"), get(previousBalance, "fixed_assets"))
	if !ok {
		return unavailable(name, unit, "fixed_assets missing")
	}
	factor, annualized := annualizationFactor(reportPeriod)
	ratio, ok := safeDiv(*rev*factor, avgFixed)
	if !ok {
		return unavailable(name, unit, "average fixed_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "revenue / avg(fixed_assets)"
	v.Annualized = annualized
	return v
}

// OperatingAssetTurnover = revenue / average(operating_assets), where
// operating_assets = total_assets - sum(investmentAssetFields).
func OperatingAssetTurnover(income, balance, previousBalance findata.Statement, reportPeriod string) Value {
	const name, unit = "经营资产周转率", "次"
	rev := get(income, "revenue")
	totalAssets := get(balance, "total_assets")
	if rev == nil || totalAssets == nil {
		return unavailable(name, unit, "revenue or total_assets missing")
	}
	investments, _ := sumPresent(balance, investmentAssetFields)
	operatingAssets := *totalAssets - investments

	var prevOperating *float64
	if previousBalance != nil {
		if prevTotal := get(previousBalance, "total_assets"); prevTotal != nil {
			prevInvestments, _ := sumPresent(previousBalance, investmentAssetFields)
			prevOperating = f(*prevTotal - prevInvestments)
		}
	}
	avgOperating, ok := periodAverage(&operatingAssets, prevOperating)
	if !ok {
		return unavailable(name, unit, "operating_assets unavailable")
	}
	factor, annualized := annualizationFactor(reportPeriod)
	ratio, ok := safeDiv(*rev*factor, avgOperating)
	if !ok {
		return unavailable(name, unit, "average operating_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "revenue / avg(total_assets - investment_assets)"
	v.Annualized = annualized
	v.Intermediates = map[string]float64{"operating_assets": operatingAssets}
	return v
}

// CurrentRatio = current_assets / current_liabilities.
func CurrentRatio(balance findata.Statement) Value {
	const name, unit = "流动比率", "倍"
	ca, cl := get(balance, "current_assets"), get(balance, "current_liabilities")
	if ca == nil || cl == nil {
		return unavailable(name, unit, "current_assets or current_liabilities missing")
	}
	ratio, ok := safeDiv(*ca, *cl)
	if !ok {
		return unavailable(name, unit, "current_liabilities is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "current_assets / current_liabilities"
	return v
}

// DebtToAssetRatio = total_liabilities / total_assets * 100.
func DebtToAssetRatio(balance findata.Statement) Value {
	const name, unit = "资产负债率", "%"
	tl, ta := get(balance, "total_liabilities"), get(balance, "total_assets")
	if tl == nil || ta == nil {
		return unavailable(name, unit, "total_liabilities or total_assets missing")
	}
	ratio, ok := safeDiv(*tl*100, *ta)
	if !ok {
		return unavailable(name, unit, "total_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "total_liabilities / total_assets * 100"
	return v
}

// FinancialLiabilityRatio sums the interest-bearing liability items and
// expresses them as a share of total_assets. Requires at least one of
// the six items present.
func FinancialLiabilityRatio(balance findata.Statement) Value {
	const name, unit = "有息负债率", "%"
	ta := get(balance, "total_assets")
	if ta == nil {
		return unavailable(name, unit, "total_assets missing")
	}
	total, found := sumPresent(balance, financialLiabilityFields)
	if !found {
		return unavailable(name, unit, "no interest-bearing liability items present")
	}
	ratio, ok := safeDiv(total*100, *ta)
	if !ok {
		return unavailable(name, unit, "total_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "sum(interest_bearing_liabilities) / total_assets * 100"
	v.Intermediates = map[string]float64{"financial_liabilities": total}
	return v
}

// OperatingLiabilityRatio = (total_liabilities - financial_liabilities) / total_assets * 100.
func OperatingLiabilityRatio(balance findata.Statement) Value {
	const name, unit = "经营性负债率", "%"
	tl, ta := get(balance, "total_liabilities"), get(balance, "total_assets")
	if tl == nil || ta == nil {
		return unavailable(name, unit, "total_liabilities or total_assets missing")
	}
	financial, _ := sumPresent(balance, financialLiabilityFields)
	operating := *tl - financial
	ratio, ok := safeDiv(operating*100, *ta)
	if !ok {
		return unavailable(name, unit, "total_assets is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "(total_liabilities - financial_liabilities) / total_assets * 100"
	v.Intermediates = map[string]float64{"operating_liabilities": operating}
	return v
}

// CoreProfitCashRatio = net_operating_cash_flow / operating_income.
// A negative or zero operating_income yields unavailable rather than a
// misleading sign flip.
func CoreProfitCashRatio(income, cashFlow findata.Statement) Value {
	const name, unit = "核心利润现金比率", "倍"
	opInc := get(income, "operating_income")
	ocf := get(cashFlow, "net_operating_cash_flow")
	if opInc == nil || ocf == nil {
		return unavailable(name, unit, "operating_income or net_operating_cash_flow missing")
	}
	if *opInc <= 0 {
		return unavailable(name, unit, "operating_income is non-positive")
	}
	ratio, ok := safeDiv(*ocf, *opInc)
	if !ok {
		return unavailable(name, unit, "operating_income is zero")
	}
	v := available(name, unit, round2(ratio))
	v.Formula = "net_operating_cash_flow / operating_income"
	return v
}
