package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/export"
)

// MirrorStore is the slice of the record store the mirror worker needs.
type MirrorStore interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListUnmirrored(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkMirrored(ctx context.Context, id int64) error
	MarkMirrorError(ctx context.Context, id int64) error
}

// MirrorWorker copies committed ledger mutations into the external
// journal. The AMQP feed is the fast path; the pending scan is the backup
// for lost messages.
type MirrorWorker struct {
	store     MirrorStore
	journal   export.JournalWriter
	batchSize int
}

func NewMirrorWorker(store MirrorStore, journal export.JournalWriter, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		store:     store,
		journal:   journal,
		batchSize: batchSize,
	}
}

// HandleLedgerEvent processes one ledger event from AMQP. The message
// carries a full snapshot, so deletes need no row to read back.
func (w *MirrorWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"action", msg.Action,
		"id", msg.ID)

	entry := export.JournalEntry{
		Date:        msg.Date,
		Action:      msg.Action,
		Kind:        msg.Kind,
		Category:    msg.Category,
		AmountCents: msg.AmountCents,
		Description: msg.Description,
		UserID:      msg.UserID,
	}

	ref, err := w.journal.Append(ctx, entry)
	if err != nil {
		if msg.Action == amqp.ActionCreated {
			if markErr := w.store.MarkMirrorError(ctx, msg.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark mirror error", "id", msg.ID, "error", markErr)
			}
		}
		return fmt.Errorf("append journal entry: %w", err)
	}

	// Updates and deletes describe rows already mirrored once; only the
	// create clears the pending flag.
	if msg.Action == amqp.ActionCreated {
		if err := w.store.MarkMirrored(ctx, msg.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark as mirrored", "id", msg.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Mirrored ledger event",
		"action", msg.Action,
		"id", msg.ID,
		"journal_ref", ref)
	return nil
}

// ProcessPendingMirror mirrors transactions the event feed missed.
func (w *MirrorWorker) ProcessPendingMirror(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupMirrorCheck drains a larger pending backlog once at worker start,
// recovering from downtime or lost messages.
func (w *MirrorWorker) StartupMirrorCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *MirrorWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.store.ListUnmirrored(ctx, limit)
	if err != nil {
		return fmt.Errorf("list unmirrored transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending mirror backlog", "count", len(pending))

	for _, tx := range pending {
		entry := export.JournalEntry{
			Date:        tx.Date.String(),
			Action:      amqp.ActionCreated,
			Kind:        string(tx.Kind),
			Category:    tx.Category,
			AmountCents: tx.Amount.Cents,
			Description: tx.Description,
			UserID:      tx.UserID,
		}

		if _, err := w.journal.Append(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending transaction", "id", tx.ID, "error", err)
			if markErr := w.store.MarkMirrorError(ctx, tx.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark mirror error", "id", tx.ID, "error", markErr)
			}
			continue
		}

		if err := w.store.MarkMirrored(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark as mirrored", "id", tx.ID, "error", err)
		}
	}

	return nil
}
