// Package services holds the ledger, budget, report and auth logic. Each
// service takes the narrow slice of the store it needs; the SQLite
// repository satisfies all of them.
package services

import (
	"context"

	"finbook/internal/amqp"
	"finbook/internal/core"
)

// LedgerStore is the transaction slice of the record store.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	UpdateTransaction(ctx context.Context, userID, id int64, amount core.Money, category string, kind core.Kind) error
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// BudgetStore is the budget slice of the record store.
type BudgetStore interface {
	SetBudget(ctx context.Context, b core.Budget) error
	ListBudgets(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error)
	SumCategoryExpenses(ctx context.Context, userID int64, category string, start, end core.Date) (core.Money, error)
}

// ReportStore is the aggregate slice of the record store.
type ReportStore interface {
	SumByKind(ctx context.Context, userID int64, start, end core.Date) (income, expense core.Money, err error)
}

// UserStore is the identity slice of the record store.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
}

// EventPublisher announces committed ledger mutations. Publishing is
// best-effort; a failure never rolls back the mutation it describes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}
