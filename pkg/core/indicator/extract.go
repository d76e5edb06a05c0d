package indicator

import "github.com/earningscope/engine/pkg/core/findata"

// Compute returns the full flat taxonomy of indicators for one report
// period: every ratio and growth metric this package knows how to
// produce, keyed by its canonical name. Bucketing these into
// core/auxiliary/specific tiers is an industry-profile concern, done by
// the caller against the flat map this function returns.
func Compute(bundle findata.Bundle) map[string]Value {
	income := bundle.IncomeStatement
	balance := bundle.BalanceSheet
	cashFlow := bundle.CashFlow
	period := bundle.ReportPeriod

	var prevIncome, prevBalance findata.Statement
	if bundle.PreviousData != nil {
		prevIncome = bundle.PreviousData.IncomeStatement
		prevBalance = bundle.PreviousData.BalanceSheet
	}

	dupont := ComputeDuPont(income, balance, prevBalance, period)

	return map[string]Value{
		"revenue_growth":            RevenueGrowth(income, prevIncome),
		"net_profit_growth":         NetProfitGrowth(income, prevIncome),
		"net_profit_parent_growth":  NetProfitParentGrowth(income, prevIncome),
		"contract_liability_growth": ContractLiabilityGrowth(balance, prevBalance),
		"inventory_growth":          InventoryGrowth(balance, prevBalance),
		"rd_expense_ratio":          RDExpenseRatio(income, prevIncome),
		"sales_expense_ratio":       SalesExpenseRatio(income, prevIncome),

		"gross_margin":              GrossMargin(income),
		"core_profit_margin":        CoreProfitMargin(income),
		"return_on_total_assets":    ReturnOnTotalAssets(income, balance, prevBalance, period),
		"return_on_equity":          ReturnOnEquity(income, balance, prevBalance, period),
		"inventory_turnover":        InventoryTurnover(income, balance, prevBalance, period),
		"fixed_asset_turnover":      FixedAssetTurnover(income, balance, prevBalance, period),
		"operating_asset_turnover":  OperatingAssetTurnover(income, balance, prevBalance, period),
		"current_ratio":             CurrentRatio(balance),
		"debt_to_asset_ratio":       DebtToAssetRatio(balance),
		"financial_liability_ratio": FinancialLiabilityRatio(balance),
		"operating_liability_ratio": OperatingLiabilityRatio(balance),
		"core_profit_cash_ratio":    CoreProfitCashRatio(income, cashFlow),

		"net_profit_margin": dupont.NetProfitMargin,
		"asset_turnover":    dupont.AssetTurnover,
		"equity_multiplier": dupont.EquityMultiplier,
	}
}
