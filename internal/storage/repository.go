package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable record store for users, transactions and
// budgets. It holds no state of its own beyond the connection pool; every
// read goes back to the database.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// busy_timeout lets concurrent writers queue instead of failing fast.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new user row. The unique username constraint is the
// only duplicate check; a violation surfaces as core.ErrUsernameTaken.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	u, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return core.User{}, core.ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "username", username)
	return core.User{
		ID:           u.ID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    u.CreatedAt.Time,
	}, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Time,
	}, nil
}

// CreateTransaction appends one ledger row and returns it with the
// assigned identifier.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      tx.UserID,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Kind:        string(tx.Kind),
		OccurredOn:  tx.Date.String(),
		Description: tx.Description,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	tx.ID = id
	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", tx.UserID,
		"kind", tx.Kind,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrTransactionNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return toCoreTransaction(t)
}

// ListTransactions returns the user's ledger in insertion order. No rows
// is an empty result, not an error.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	items := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	return items, nil
}

// DeleteTransaction removes one owned row. A missing id and a foreign
// owner produce the same core.ErrTransactionNotFound so existence of other
// users' rows is never disclosed.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	affected, err := r.queries.DeleteTransactionOwned(ctx, DeleteTransactionOwnedParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrTransactionNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// UpdateTransaction overwrites amount, category and kind of one owned row.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id int64, amount core.Money, category string, kind core.Kind) error {
	affected, err := r.queries.UpdateTransactionOwned(ctx, UpdateTransactionOwnedParams{
		ID:          id,
		UserID:      userID,
		AmountCents: amount.Cents,
		Category:    category,
		Kind:        string(kind),
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrTransactionNotFound
	}

	slog.InfoContext(ctx, "Transaction updated",
		"id", id,
		"user_id", userID,
		"kind", kind,
		"category", category,
		"amount_cents", amount.Cents)
	return nil
}

// SetBudget upserts the ceiling for one (user, category, period) triple.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) error {
	err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		UserID:      b.UserID,
		Category:    b.Category,
		AmountCents: b.Amount.Cents,
		Period:      string(b.Period),
	})
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"user_id", b.UserID,
		"category", b.Category,
		"period", b.Period,
		"amount_cents", b.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgetsByPeriod(ctx, ListBudgetsByPeriodParams{
		UserID: userID,
		Period: string(period),
	})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	items := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		items = append(items, core.Budget{
			ID:       row.ID,
			UserID:   row.UserID,
			Category: row.Category,
			Amount:   core.Money{Cents: row.AmountCents},
			Period:   core.Period(row.Period),
		})
	}
	return items, nil
}

// SumByKind totals income and expenses for a user inside [start, end).
// A kind with no rows totals zero.
func (r *SQLiteRepository) SumByKind(ctx context.Context, userID int64, start, end core.Date) (income, expense core.Money, err error) {
	sums, err := r.queries.SumAmountsByKind(ctx, SumAmountsByKindParams{
		UserID: userID,
		Start:  start.String(),
		End:    end.String(),
	})
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum amounts by kind: %w", err)
	}

	for _, s := range sums {
		switch core.Kind(s.Kind) {
		case core.Income:
			income = core.Money{Cents: s.TotalCents}
		case core.Expense:
			expense = core.Money{Cents: s.TotalCents}
		}
	}
	return income, expense, nil
}

func (r *SQLiteRepository) SumCategoryExpenses(ctx context.Context, userID int64, category string, start, end core.Date) (core.Money, error) {
	total, err := r.queries.SumCategoryExpenses(ctx, SumCategoryExpensesParams{
		UserID:   userID,
		Category: category,
		Start:    start.String(),
		End:      end.String(),
	})
	if err != nil {
		return core.Money{}, fmt.Errorf("sum category expenses: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// ListUnmirrored returns transactions the mirror worker has not exported
// yet, oldest first.
func (r *SQLiteRepository) ListUnmirrored(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.ListUnmirroredTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list unmirrored transactions: %w", err)
	}

	items := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	return items, nil
}

func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionMirrored(ctx, id); err != nil {
		return fmt.Errorf("mark transaction mirrored: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as mirrored", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionMirrorError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction mirror error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with mirror error", "id", id)
	return nil
}

func toCoreTransaction(t Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(t.OccurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", t.OccurredOn, err)
	}
	return core.Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      core.Money{Cents: t.AmountCents},
		Category:    t.Category,
		Kind:        core.Kind(t.Kind),
		Date:        date,
		Description: t.Description,
	}, nil
}
