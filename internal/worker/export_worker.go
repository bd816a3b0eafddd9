// Package worker consumes ledger events and mirrors each owner's records
// to an external spreadsheet.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/log"
	"dompet/internal/records"
	"dompet/internal/sheets"
)

// SnapshotStore is what the export worker reads.
type SnapshotStore interface {
	records.TransactionReader
	records.DebtCreditReader
	records.OwnerLister
}

// ExportWorker rewrites an owner's export tabs whenever one of their
// records changes. Messages carry ids only, so every export re-reads the
// full snapshot; replaying a message is harmless.
type ExportWorker struct {
	store    SnapshotStore
	exporter sheets.Exporter
	logger   *log.Logger
	now      func() time.Time

	// exported maps owner to the timestamp of the newest message already
	// covered by an export.
	mu       sync.Mutex
	exported map[string]time.Time
}

func NewExportWorker(store SnapshotStore, exporter sheets.Exporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentSheets),
		now:      time.Now,
		exported: map[string]time.Time{},
	}
}

// HandleRecordChanged exports the owner of msg. A message older than the
// owner's last export is acknowledged without work.
func (w *ExportWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	if msg == nil || msg.Owner == "" {
		return fmt.Errorf("record changed message without owner")
	}

	if w.covered(msg.Owner, msg.Timestamp) {
		w.logger.DebugContext(ctx, "Skipping change already exported",
			log.FieldOwner, msg.Owner,
			log.FieldRecordID, msg.ID)
		return nil
	}

	start := w.now()
	if err := w.ExportOwner(ctx, msg.Owner); err != nil {
		return err
	}
	w.markExported(msg.Owner, start)

	w.logger.InfoContext(ctx, "Exported owner after change",
		log.FieldOwner, msg.Owner,
		log.FieldRecordKind, msg.Kind,
		log.FieldRecordID, msg.ID,
		log.FieldOperation, msg.Op)
	return nil
}

// ExportOwner reads both record families concurrently and writes them out.
func (w *ExportWorker) ExportOwner(ctx context.Context, owner string) error {
	snap := sheets.Snapshot{Owner: owner, TakenAt: w.now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := w.store.FetchTransactions(gctx, owner, nil)
		snap.Transactions = txs
		return err
	})
	g.Go(func() error {
		ds, err := w.store.FetchDebtCredits(gctx, owner, nil)
		snap.DebtCredits = ds
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("read snapshot for %s: %w", owner, err)
	}

	if err := w.exporter.Export(ctx, snap); err != nil {
		return fmt.Errorf("export %s: %w", owner, err)
	}
	return nil
}

// StartupExport refreshes every owner that still has pending debts, to
// recover from changes published while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	owners, err := w.store.ListOwnersWithPendingDebts(ctx)
	if err != nil {
		return fmt.Errorf("list owners for startup export: %w", err)
	}
	if len(owners) == 0 {
		w.logger.InfoContext(ctx, "No owners to export on startup")
		return nil
	}

	success, failed := 0, 0
	for _, owner := range owners {
		start := w.now()
		if err := w.ExportOwner(ctx, owner); err != nil {
			w.logger.ErrorContext(ctx, "Startup export failed",
				log.FieldOperation, log.OpExport,
				log.FieldOwner, owner,
				log.FieldError, err)
			failed++
			continue
		}
		w.markExported(owner, start)
		success++
	}

	w.logger.InfoContext(ctx, "Startup export completed",
		"total", len(owners),
		"exported", success,
		"errors", failed)
	return nil
}

func (w *ExportWorker) covered(owner string, at time.Time) bool {
	if at.IsZero() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.exported[owner]
	return ok && at.Before(last)
}

func (w *ExportWorker) markExported(owner string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if at.After(w.exported[owner]) {
		w.exported[owner] = at
	}
}
