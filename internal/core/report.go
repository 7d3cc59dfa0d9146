package core

// Report is the income/expense/savings summary for one user over one
// period window. It is a plain record; rendering belongs to the caller.
type Report struct {
	Period  Period
	Income  Money
	Expense Money
	Savings Money
	Start   Date
	End     Date
}

// BudgetStatus compares one budget ceiling against the expenses actually
// recorded in its category inside the period window.
type BudgetStatus struct {
	Category string
	Budget   Money
	Actual   Money
	Exceeded bool
}

// ExceedanceReport lists the per-category comparisons for every budget a
// user holds in a period, plus whether any ceiling was crossed.
type ExceedanceReport struct {
	Period      Period
	Statuses    []BudgetStatus
	AnyExceeded bool
}
