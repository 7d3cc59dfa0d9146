package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/core"
)

// LedgerService owns the transaction lifecycle for authenticated users.
// The user id it is handed has already been authenticated upstream.
type LedgerService struct {
	store  LedgerStore
	events EventPublisher // optional
	now    func() time.Time
}

func NewLedgerService(store LedgerStore, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// AddTransaction validates and appends one money movement. A zero date
// defaults to today. Validation happens before anything touches the
// store, so a rejected call leaves no partial mutation behind.
func (s *LedgerService) AddTransaction(ctx context.Context, userID int64, kind core.Kind, amount core.Money, category, description string, date core.Date) (core.Transaction, error) {
	if date.IsZero() {
		date = core.DateOf(s.now())
	}

	tx := core.Transaction{
		UserID:      userID,
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Kind:        kind,
		Date:        date,
		Description: strings.TrimSpace(description),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.publish(ctx, amqp.ActionCreated, saved)
	return saved, nil
}

// ListTransactions returns the user's ledger in insertion order; a user
// without transactions gets an empty sequence, never an error.
func (s *LedgerService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	items, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if items == nil {
		items = []core.Transaction{}
	}
	return items, nil
}

// DeleteTransaction removes one owned transaction. Missing and not-owned
// collapse into core.ErrTransactionNotFound.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	// Snapshot before the delete so the event can describe the row; the
	// delete itself stays a single owner-filtered statement.
	snapshot, snapErr := s.store.GetTransaction(ctx, id)

	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	if snapErr == nil {
		s.publish(ctx, amqp.ActionDeleted, snapshot)
	}
	return nil
}

// UpdateTransaction overwrites amount, category and kind of one owned
// transaction. Date and owner never change.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id int64, amount core.Money, category string, kind core.Kind) (core.Transaction, error) {
	category = strings.TrimSpace(category)

	// Validate against a probe transaction so the rules stay in one place.
	probe := core.Transaction{
		UserID:   userID,
		Amount:   amount,
		Category: category,
		Kind:     kind,
		Date:     core.DateOf(s.now()),
	}
	if err := probe.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpdateTransaction(ctx, userID, id, amount, category, kind); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read back updated transaction: %w", err)
	}

	s.publish(ctx, amqp.ActionUpdated, updated)
	return updated, nil
}

func (s *LedgerService) publish(ctx context.Context, action string, tx core.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, amqp.NewLedgerEventMessage(action, tx)); err != nil {
		// The mutation is already committed; the mirror worker's backup
		// scan picks up anything a lost message leaves behind.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"action", action,
			"transaction_id", tx.ID,
			"error", err)
	}
}
