package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	// Kind classifies a transaction as money coming in or going out.
	Kind string

	// Period is the granularity a budget or report is evaluated over.
	Period string

	// Date is a calendar date; the time-of-day component is always UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is the identity every ledger and budget row is scoped to.
	// PasswordHash is opaque to the core; only the auth service reads it.
	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Transaction is a single money movement. UserID and Date are fixed at
	// creation; amount, category and kind may be overwritten by an update.
	Transaction struct {
		ID          int64
		UserID      int64
		Amount      Money
		Category    string
		Kind        Kind
		Date        Date
		Description string
	}

	// Budget is a spending ceiling for one (user, category, period) triple.
	Budget struct {
		ID       int64
		UserID   int64
		Category string
		Amount   Money
		Period   Period
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")

	// ErrTransactionNotFound covers both a missing id and an id owned by a
	// different user, so callers cannot probe for other users' rows.
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ParseKind validates a transaction kind literal.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

// ParsePeriod validates a period literal. Anything other than the two
// recognized values is an error, never a silent default.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date in ISO form, which is also how it is stored.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Sub returns m minus other. Savings may legitimately go negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (t Transaction) Validate() error {
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (b Budget) Validate() error {
	if _, err := ParsePeriod(string(b.Period)); err != nil {
		return err
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
