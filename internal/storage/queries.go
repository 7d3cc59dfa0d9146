package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the raw SQL statements of the store. All multi-step
// compare-and-mutate operations are expressed as single conditional
// statements so they commit atomically.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// User mirrors a row of the users table.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    sql.NullTime
}

// Transaction mirrors a row of the transactions table. OccurredOn is an
// ISO yyyy-mm-dd string; lexicographic order matches date order, which is
// what the window queries rely on.
type Transaction struct {
	ID             int64
	UserID         int64
	AmountCents    int64
	Category       string
	Kind           string
	OccurredOn     string
	Description    string
	Mirrored       int64
	MirrorAttempts int64
	CreatedAt      sql.NullTime
}

// Budget mirrors a row of the budgets table.
type Budget struct {
	ID          int64
	UserID      int64
	Category    string
	AmountCents int64
	Period      string
}

// KindSum is one row of the grouped transaction aggregate.
type KindSum struct {
	Kind       string
	TotalCents int64
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
}

const createUser = `
INSERT INTO users (username, password_hash) VALUES (?, ?)
RETURNING id, created_at
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	u := User{Username: arg.Username, PasswordHash: arg.PasswordHash}
	err := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

const getUserByUsername = `
SELECT id, username, password_hash, created_at FROM users WHERE username = ?
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByUsername, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

type CreateTransactionParams struct {
	UserID      int64
	AmountCents int64
	Category    string
	Kind        string
	OccurredOn  string
	Description string
}

const createTransaction = `
INSERT INTO transactions (user_id, amount_cents, category, kind, occurred_on, description)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.UserID, arg.AmountCents, arg.Category, arg.Kind, arg.OccurredOn, arg.Description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getTransaction = `
SELECT id, user_id, amount_cents, category, kind, occurred_on, description,
       mirrored, mirror_attempts, created_at
FROM transactions WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	var t Transaction
	err := q.db.QueryRowContext(ctx, getTransaction, id).Scan(
		&t.ID, &t.UserID, &t.AmountCents, &t.Category, &t.Kind,
		&t.OccurredOn, &t.Description, &t.Mirrored, &t.MirrorAttempts, &t.CreatedAt)
	return t, err
}

const listTransactionsByUser = `
SELECT id, user_id, amount_cents, category, kind, occurred_on, description,
       mirrored, mirror_attempts, created_at
FROM transactions WHERE user_id = ? ORDER BY id
`

func (q *Queries) ListTransactionsByUser(ctx context.Context, userID int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.AmountCents, &t.Category, &t.Kind,
			&t.OccurredOn, &t.Description, &t.Mirrored, &t.MirrorAttempts, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

type DeleteTransactionOwnedParams struct {
	ID     int64
	UserID int64
}

const deleteTransactionOwned = `
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

// DeleteTransactionOwned removes a transaction only when it belongs to the
// given user. The ownership check and the delete are one statement, so
// there is no gap between them. Returns the number of rows removed.
func (q *Queries) DeleteTransactionOwned(ctx context.Context, arg DeleteTransactionOwnedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransactionOwned, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type UpdateTransactionOwnedParams struct {
	ID          int64
	UserID      int64
	AmountCents int64
	Category    string
	Kind        string
}

const updateTransactionOwned = `
UPDATE transactions SET amount_cents = ?, category = ?, kind = ?
WHERE id = ? AND user_id = ?
`

// UpdateTransactionOwned overwrites amount, category and kind in place.
// Owner and date stay immutable; the filter doubles as the ownership check.
func (q *Queries) UpdateTransactionOwned(ctx context.Context, arg UpdateTransactionOwnedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransactionOwned,
		arg.AmountCents, arg.Category, arg.Kind, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type UpsertBudgetParams struct {
	UserID      int64
	Category    string
	AmountCents int64
	Period      string
}

const upsertBudget = `
INSERT INTO budgets (user_id, category, amount_cents, period)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, category, period)
DO UPDATE SET amount_cents = excluded.amount_cents
`

// UpsertBudget inserts or overwrites the ceiling for one
// (user, category, period) triple in a single conditional write, keyed on
// the table's uniqueness constraint. Concurrent calls for the same triple
// serialize on the constraint instead of racing a select-then-branch.
func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) error {
	_, err := q.db.ExecContext(ctx, upsertBudget,
		arg.UserID, arg.Category, arg.AmountCents, arg.Period)
	return err
}

type ListBudgetsByPeriodParams struct {
	UserID int64
	Period string
}

const listBudgetsByPeriod = `
SELECT id, user_id, category, amount_cents, period
FROM budgets WHERE user_id = ? AND period = ?
`

func (q *Queries) ListBudgetsByPeriod(ctx context.Context, arg ListBudgetsByPeriodParams) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetsByPeriod, arg.UserID, arg.Period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.AmountCents, &b.Period); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

type SumAmountsByKindParams struct {
	UserID int64
	Start  string
	End    string
}

const sumAmountsByKind = `
SELECT kind, COALESCE(SUM(amount_cents), 0)
FROM transactions
WHERE user_id = ? AND occurred_on >= ? AND occurred_on < ?
GROUP BY kind
`

// SumAmountsByKind totals a user's transactions per kind over the
// half-open window [start, end).
func (q *Queries) SumAmountsByKind(ctx context.Context, arg SumAmountsByKindParams) ([]KindSum, error) {
	rows, err := q.db.QueryContext(ctx, sumAmountsByKind, arg.UserID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []KindSum
	for rows.Next() {
		var s KindSum
		if err := rows.Scan(&s.Kind, &s.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

type SumCategoryExpensesParams struct {
	UserID   int64
	Category string
	Start    string
	End      string
}

const sumCategoryExpenses = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM transactions
WHERE user_id = ? AND category = ? AND kind = 'expense'
  AND occurred_on >= ? AND occurred_on < ?
`

func (q *Queries) SumCategoryExpenses(ctx context.Context, arg SumCategoryExpensesParams) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumCategoryExpenses,
		arg.UserID, arg.Category, arg.Start, arg.End).Scan(&total)
	return total, err
}

const listUnmirroredTransactions = `
SELECT id, user_id, amount_cents, category, kind, occurred_on, description,
       mirrored, mirror_attempts, created_at
FROM transactions WHERE mirrored = 0 ORDER BY id LIMIT ?
`

func (q *Queries) ListUnmirroredTransactions(ctx context.Context, limit int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listUnmirroredTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.AmountCents, &t.Category, &t.Kind,
			&t.OccurredOn, &t.Description, &t.Mirrored, &t.MirrorAttempts, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const markTransactionMirrored = `
UPDATE transactions SET mirrored = 1 WHERE id = ?
`

func (q *Queries) MarkTransactionMirrored(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionMirrored, id)
	return err
}

const markTransactionMirrorError = `
UPDATE transactions SET mirror_attempts = mirror_attempts + 1 WHERE id = ?
`

func (q *Queries) MarkTransactionMirrorError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionMirrorError, id)
	return err
}
