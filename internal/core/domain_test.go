package core

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"income", Income, true},
		{"expense", Expense, true},
		{" Expense ", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("case %d: expected ErrInvalidKind, got %v", i, err)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("monthly"); err != nil || p != Monthly {
		t.Fatalf("got (%q, %v)", p, err)
	}
	if p, err := ParsePeriod("YEARLY"); err != nil || p != Yearly {
		t.Fatalf("got (%q, %v)", p, err)
	}
	for _, bad := range []string{"weekly", "daily", "", "month"} {
		if _, err := ParsePeriod(bad); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("%q: expected ErrInvalidPeriod, got %v", bad, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:   1,
		Amount:   Money{Cents: 1234},
		Category: "Food",
		Kind:     Expense,
		Date:     NewDate(2025, 6, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Zero amounts are allowed; negatives are not.
	zero := good
	zero.Amount = Money{Cents: 0}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: -1}, Category: "Food", Kind: Expense, Date: NewDate(2025, 6, 15)},
		{Amount: Money{Cents: 1}, Category: "", Kind: Expense, Date: NewDate(2025, 6, 15)},
		{Amount: Money{Cents: 1}, Category: "Food", Kind: "loan", Date: NewDate(2025, 6, 15)},
		{Amount: Money{Cents: 1}, Category: "Food", Kind: Income, Date: Date{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{UserID: 1, Category: "Food", Amount: Money{Cents: 10000}, Period: Monthly}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Budget{
		{Category: "Food", Amount: Money{Cents: 100}, Period: "weekly"},
		{Category: "", Amount: Money{Cents: 100}, Period: Monthly},
		{Category: "Food", Amount: Money{Cents: -100}, Period: Yearly},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2025-12-31" {
		t.Fatalf("round trip got %q", d.String())
	}
	if _, err := ParseDate("31/12/2025"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
