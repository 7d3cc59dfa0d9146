package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/core"
)

func fixedNow(year, month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	}
}

func TestAddTransactionRoundTrip(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	saved, err := svc.AddTransaction(ctx, 1, core.Expense, core.Money{Cents: 4000}, "Food", "groceries", core.NewDate(2025, 6, 10))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected a persisted id")
	}

	items, err := svc.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(items))
	}
	got := items[0]
	if got.Amount.Cents != 4000 || got.Category != "Food" || got.Kind != core.Expense || got.Description != "groceries" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Date.String() != "2025-06-10" {
		t.Errorf("date = %s, want 2025-06-10", got.Date)
	}

	if actions := pub.actions(); len(actions) != 1 || actions[0] != amqp.ActionCreated {
		t.Errorf("published actions = %v, want [created]", actions)
	}
}

func TestAddTransactionDefaultsDateToToday(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	svc.now = fixedNow(2025, 3, 15)

	saved, err := svc.AddTransaction(context.Background(), 1, core.Income, core.Money{Cents: 1000}, "Salary", "", core.Date{})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if saved.Date.String() != "2025-03-15" {
		t.Errorf("date = %s, want 2025-03-15", saved.Date)
	}
}

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		kind     core.Kind
		amount   core.Money
		category string
		wantErr  error
	}{
		{"negative amount", core.Expense, core.Money{Cents: -100}, "Food", core.ErrInvalidAmount},
		{"empty category", core.Expense, core.Money{Cents: 100}, "   ", core.ErrEmptyCategory},
		{"unknown kind", core.Kind("transfer"), core.Money{Cents: 100}, "Food", core.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, 1, tt.kind, tt.amount, tt.category, "", core.NewDate(2025, 6, 1))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if items, _ := svc.ListTransactions(ctx, 1); len(items) != 0 {
		t.Errorf("rejected calls left %d transactions behind", len(items))
	}
}

func TestAddTransactionZeroAmountAllowed(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), nil)

	if _, err := svc.AddTransaction(context.Background(), 1, core.Expense, core.Money{}, "Misc", "", core.NewDate(2025, 6, 1)); err != nil {
		t.Fatalf("zero amount should be accepted: %v", err)
	}
}

func TestListTransactionsEmptyIsNotError(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), nil)

	items, err := svc.ListTransactions(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", items)
	}
}

func TestDeleteTransactionOwnerOnly(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	saved, err := svc.AddTransaction(ctx, 1, core.Expense, core.Money{Cents: 500}, "Food", "", core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, 2, saved.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("cross-user delete err = %v, want ErrTransactionNotFound", err)
	}
	if items, _ := svc.ListTransactions(ctx, 1); len(items) != 1 {
		t.Fatal("cross-user delete must leave the record in place")
	}

	if err := svc.DeleteTransaction(ctx, 1, saved.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if items, _ := svc.ListTransactions(ctx, 1); len(items) != 0 {
		t.Fatal("owner delete left the record behind")
	}

	if actions := pub.actions(); len(actions) != 2 || actions[1] != amqp.ActionDeleted {
		t.Errorf("published actions = %v, want created then deleted", actions)
	}
}

func TestDeleteTransactionMissing(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), nil)

	if err := svc.DeleteTransaction(context.Background(), 1, 99); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("err = %v, want ErrTransactionNotFound", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	saved, err := svc.AddTransaction(ctx, 1, core.Expense, core.Money{Cents: 500}, "Food", "", core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	updated, err := svc.UpdateTransaction(ctx, 1, saved.ID, core.Money{Cents: 750}, "Dining", core.Expense)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Amount.Cents != 750 || updated.Category != "Dining" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Date.String() != "2025-06-01" {
		t.Errorf("update changed the date to %s", updated.Date)
	}

	if actions := pub.actions(); len(actions) != 2 || actions[1] != amqp.ActionUpdated {
		t.Errorf("published actions = %v, want created then updated", actions)
	}
}

func TestUpdateTransactionCrossUser(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	saved, err := svc.AddTransaction(ctx, 1, core.Expense, core.Money{Cents: 500}, "Food", "", core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if _, err := svc.UpdateTransaction(ctx, 2, saved.ID, core.Money{Cents: 1}, "Hijack", core.Income); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("cross-user update err = %v, want ErrTransactionNotFound", err)
	}

	items, _ := svc.ListTransactions(ctx, 1)
	if items[0].Amount.Cents != 500 || items[0].Category != "Food" {
		t.Errorf("cross-user update mutated the record: %+v", items[0])
	}
}

func TestUpdateTransactionRejectsInvalidInput(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	saved, err := svc.AddTransaction(ctx, 1, core.Expense, core.Money{Cents: 500}, "Food", "", core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if _, err := svc.UpdateTransaction(ctx, 1, saved.ID, core.Money{Cents: -1}, "Food", core.Expense); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.UpdateTransaction(ctx, 1, saved.ID, core.Money{Cents: 1}, "", core.Expense); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("err = %v, want ErrEmptyCategory", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{fail: true}
	svc := NewLedgerService(store, pub)

	saved, err := svc.AddTransaction(context.Background(), 1, core.Income, core.Money{Cents: 100}, "Salary", "", core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("AddTransaction must survive a publish failure: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("transaction was not persisted")
	}
}

func TestUserIsolationInListing(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, 1, core.Expense, core.Money{Cents: 100}, "Food", "", core.NewDate(2025, 6, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddTransaction(ctx, 2, core.Expense, core.Money{Cents: 200}, "Rent", "", core.NewDate(2025, 6, 1)); err != nil {
		t.Fatal(err)
	}

	items, err := svc.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Category != "Food" {
		t.Errorf("user 1 sees %+v", items)
	}
}
