package services

import (
	"context"
	"sync"

	"finbook/internal/amqp"
	"finbook/internal/core"
)

// fakeStore is an in-memory stand-in for the SQLite repository. It keeps
// the same contracts: atomic per-triple budget upsert, collapsed
// not-found/not-owned outcomes, half-open window sums.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	txs    map[int64]core.Transaction
	// budgets keyed by (user, category, period)
	budgets map[budgetKey]core.Budget
	users   map[string]core.User

	failAll bool // simulate an unavailable store
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		txs:     make(map[int64]core.Transaction),
		budgets: make(map[budgetKey]core.Budget),
		users:   make(map[string]core.User),
	}
}

var errStoreDown = context.DeadlineExceeded

type budgetKey struct {
	userID   int64
	category string
	period   core.Period
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return core.Transaction{}, errStoreDown
	}
	f.nextID++
	tx.ID = f.nextID
	f.txs[tx.ID] = tx
	return tx, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errStoreDown
	}
	var items []core.Transaction
	for id := int64(1); id <= f.nextID; id++ {
		if tx, ok := f.txs[id]; ok && tx.UserID == userID {
			items = append(items, tx)
		}
	}
	return items, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok || tx.UserID != userID {
		return core.ErrTransactionNotFound
	}
	delete(f.txs, id)
	return nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, userID, id int64, amount core.Money, category string, kind core.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok || tx.UserID != userID {
		return core.ErrTransactionNotFound
	}
	tx.Amount = amount
	tx.Category = category
	tx.Kind = kind
	f.txs[id] = tx
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return tx, nil
}

func (f *fakeStore) SetBudget(_ context.Context, b core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errStoreDown
	}
	key := budgetKey{b.UserID, b.Category, b.Period}
	if existing, ok := f.budgets[key]; ok {
		existing.Amount = b.Amount
		f.budgets[key] = existing
		return nil
	}
	f.nextID++
	b.ID = f.nextID
	f.budgets[key] = b
	return nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []core.Budget
	for _, b := range f.budgets {
		if b.UserID == userID && b.Period == period {
			items = append(items, b)
		}
	}
	return items, nil
}

func (f *fakeStore) SumCategoryExpenses(_ context.Context, userID int64, category string, start, end core.Date) (core.Money, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, tx := range f.txs {
		if tx.UserID == userID && tx.Category == category && tx.Kind == core.Expense &&
			core.InWindow(tx.Date, start, end) {
			total += tx.Amount.Cents
		}
	}
	return core.Money{Cents: total}, nil
}

func (f *fakeStore) SumByKind(_ context.Context, userID int64, start, end core.Date) (income, expense core.Money, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return core.Money{}, core.Money{}, errStoreDown
	}
	for _, tx := range f.txs {
		if tx.UserID != userID || !core.InWindow(tx.Date, start, end) {
			continue
		}
		switch tx.Kind {
		case core.Income:
			income.Cents += tx.Amount.Cents
		case core.Expense:
			expense.Cents += tx.Amount.Cents
		}
	}
	return income, expense, nil
}

func (f *fakeStore) CreateUser(_ context.Context, username, passwordHash string) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return core.User{}, core.ErrUsernameTaken
	}
	f.nextID++
	u := core.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

// fakePublisher records published ledger events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEventMessage
	fail   bool
}

func (p *fakePublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return context.DeadlineExceeded
	}
	p.events = append(p.events, msg)
	return nil
}

func (p *fakePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}
