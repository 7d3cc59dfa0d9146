// Package export defines the outbound mirror ports. The Google adapter is
// the production implementation; tests substitute in-memory fakes.
package export

import (
	"context"
)

// JournalEntry is one row of the mirrored ledger journal. The journal is
// append-only: updates and deletes land as new rows tagged with their
// action rather than rewriting history.
type JournalEntry struct {
	Date        string
	Action      string
	Kind        string
	Category    string
	AmountCents int64
	Description string
	UserID      int64
}

// JournalWriter appends one entry to the external journal.
type JournalWriter interface {
	Append(ctx context.Context, entry JournalEntry) (rowRef string, err error)
}
