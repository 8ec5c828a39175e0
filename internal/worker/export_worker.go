// Package worker drains the export pipeline: created-events from the queue
// plus a periodic sweep for rows the queue missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"caixa/internal/amqp"
	"caixa/internal/core"
)

// Storage is the slice of the repository the worker needs.
type Storage interface {
	GetByID(ctx context.Context, id string) (*core.Transaction, error)
	ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// LedgerAppender copies one transaction to the export target. Satisfied by
// export.SheetsClient.
type LedgerAppender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
}

type ExportWorker struct {
	storage   Storage
	appender  LedgerAppender
	batchSize int
}

func NewExportWorker(storage Storage, appender LedgerAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleCreatedMessage exports the transaction named by a queue message. A
// returned error means the message should be redelivered.
func (w *ExportWorker) HandleCreatedMessage(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	slog.InfoContext(ctx, "Processing created message",
		"transaction_id", msg.ID,
		"version", msg.Version)

	tx, err := w.storage.GetByID(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if tx == nil {
		// Row vanished between publish and consume; nothing to export.
		slog.WarnContext(ctx, "Transaction in message no longer exists", "transaction_id", msg.ID)
		return nil
	}

	return w.exportOne(ctx, *tx)
}

// ProcessPending sweeps rows the queue missed, oldest first. Individual
// failures are recorded and skipped so one bad row cannot stall the batch.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending export: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, tx := range pending {
		if err := w.exportOne(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"transaction_id", tx.ID, "error", err)
		}
	}

	return nil
}

func (w *ExportWorker) exportOne(ctx context.Context, tx core.Transaction) error {
	if err := w.appender.AppendTransaction(ctx, tx); err != nil {
		if markErr := w.storage.MarkExportError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"transaction_id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append transaction: %w", err)
	}

	if err := w.storage.MarkExported(ctx, tx.ID); err != nil {
		// The append succeeded; the sweep will retry the mark via re-export,
		// which is tolerable for a backup copy.
		slog.ErrorContext(ctx, "Failed to mark transaction exported",
			"transaction_id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", tx.ID,
		"amount_cents", tx.Amount.Cents)

	return nil
}
