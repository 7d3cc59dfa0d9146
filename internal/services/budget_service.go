package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finbook/internal/core"
)

// BudgetService owns per-category spending ceilings and their comparison
// against recorded expenses.
type BudgetService struct {
	store BudgetStore
	now   func() time.Time
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{
		store: store,
		now:   time.Now,
	}
}

// SetBudget creates or overwrites the ceiling for one (user, category,
// period) triple. The store performs the write as a single atomic upsert.
func (s *BudgetService) SetBudget(ctx context.Context, userID int64, category string, amount core.Money, period core.Period) error {
	b := core.Budget{
		UserID:   userID,
		Category: strings.TrimSpace(category),
		Amount:   amount,
		Period:   period,
	}
	if err := b.Validate(); err != nil {
		return err
	}

	if err := s.store.SetBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudget lists every budget the user holds for a period. Ordering is
// not part of the contract.
func (s *BudgetService) GetBudget(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	if _, err := core.ParsePeriod(string(period)); err != nil {
		return nil, err
	}

	items, err := s.store.ListBudgets(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	if items == nil {
		items = []core.Budget{}
	}
	return items, nil
}

// CheckExceedance compares every budget of the (user, period) pair against
// the expenses recorded in its category inside the current period window.
// A category exceeds only when spending is strictly above the ceiling.
func (s *BudgetService) CheckExceedance(ctx context.Context, userID int64, period core.Period) (core.ExceedanceReport, error) {
	start, end, err := core.PeriodWindow(period, s.now())
	if err != nil {
		return core.ExceedanceReport{}, err
	}

	budgets, err := s.store.ListBudgets(ctx, userID, period)
	if err != nil {
		return core.ExceedanceReport{}, fmt.Errorf("check exceedance: %w", err)
	}

	report := core.ExceedanceReport{
		Period:   period,
		Statuses: make([]core.BudgetStatus, 0, len(budgets)),
	}
	for _, b := range budgets {
		actual, err := s.store.SumCategoryExpenses(ctx, userID, b.Category, start, end)
		if err != nil {
			return core.ExceedanceReport{}, fmt.Errorf("sum expenses for %s: %w", b.Category, err)
		}

		exceeded := actual.Cents > b.Amount.Cents
		report.Statuses = append(report.Statuses, core.BudgetStatus{
			Category: b.Category,
			Budget:   b.Amount,
			Actual:   actual,
			Exceeded: exceeded,
		})
		if exceeded {
			report.AnyExceeded = true
		}
	}
	return report, nil
}
