package report

import (
	"context"
	"fmt"

	"github.com/earningscope/engine/pkg/core/workflow"
)

// FetchFinancialData builds the fetch_financial_data node: calls the
// composite financial-data endpoint and sets
// {income_statement, balance_sheet, cash_flow, previous_period,
// previous_data}. A missing income statement is fatal (recorded into
// state.Errors) since every downstream indicator depends on it.
func FetchFinancialData(deps Deps) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (workflow.State, error) {
		bundle, err := deps.FinData.CompleteFinancialData(ctx, s.CompanyCode, s.ReportPeriod, DefaultReportType, true)
		s = s.WithTool("complete_financial_data")
		if err != nil {
			return s, err
		}
		if bundle == nil || bundle.IncomeStatement == nil {
			return s.WithError(fmt.Sprintf("fetch_financial_data: no income statement for %s %s", s.CompanyCode, s.ReportPeriod)), nil
		}

		s.IncomeStatement = bundle.IncomeStatement
		s.BalanceSheet = bundle.BalanceSheet
		s.CashFlow = bundle.CashFlow
		s.PreviousPeriod = bundle.PreviousPeriod
		s.PreviousData = bundle.PreviousData
		return s, nil
	}
}
