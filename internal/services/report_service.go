package services

import (
	"context"
	"fmt"
	"time"

	"finbook/internal/core"
)

// ReportService derives income/expense/savings summaries from the ledger.
// Reports are pure reads; identical ledger state yields identical output.
type ReportService struct {
	store ReportStore
	now   func() time.Time
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{
		store: store,
		now:   time.Now,
	}
}

// GenerateReport sums the user's transactions per kind over the period
// window anchored to the current date. A window with no transactions of a
// kind reports zero for it, and savings may be negative.
func (s *ReportService) GenerateReport(ctx context.Context, userID int64, period core.Period) (core.Report, error) {
	start, end, err := core.PeriodWindow(period, s.now())
	if err != nil {
		return core.Report{}, err
	}

	income, expense, err := s.store.SumByKind(ctx, userID, start, end)
	if err != nil {
		return core.Report{}, fmt.Errorf("generate report: %w", err)
	}

	return core.Report{
		Period:  period,
		Income:  income,
		Expense: expense,
		Savings: income.Sub(expense),
		Start:   start,
		End:     end,
	}, nil
}
