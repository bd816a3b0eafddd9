package core

// BalanceSummary holds income and expense totals. Balance is always
// TotalIncome minus TotalExpense.
type BalanceSummary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
}

// Outstanding holds what is still owed across pending debt/credit records.
type Outstanding struct {
	TotalDebt   Money
	TotalCredit Money
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
	Count  int
}
