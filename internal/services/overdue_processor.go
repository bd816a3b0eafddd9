package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/records"
)

// OverduePublisher sends debt.overdue reminders.
type OverduePublisher interface {
	PublishDebtOverdue(ctx context.Context, msg *amqp.DebtOverdueMessage) error
}

// OverdueStore is what the processor reads.
type OverdueStore interface {
	records.OwnerLister
	records.DebtCreditReader
}

// OverdueProcessor periodically scans every owner with pending records and
// publishes one reminder per overdue record per day.
type OverdueProcessor struct {
	store     OverdueStore
	publisher OverduePublisher
	rule      OverdueRule
	interval  time.Duration
	now       func() time.Time

	// notified maps record id to the day key of its last reminder.
	sentMu   sync.Mutex
	notified map[string]string

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewOverdueProcessor(store OverdueStore, publisher OverduePublisher, interval time.Duration) *OverdueProcessor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &OverdueProcessor{
		store:     store,
		publisher: publisher,
		rule:      StrictRule{},
		interval:  interval,
		now:       time.Now,
		notified:  map[string]string{},
	}
}

// Start begins the scan loop. Returns an error if already running.
func (p *OverdueProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("overdue processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Overdue processor started", "interval", p.interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *OverdueProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Overdue processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Overdue processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *OverdueProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *OverdueProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Scan immediately on startup
	p.scan(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

func (p *OverdueProcessor) scan(ctx context.Context) {
	n, err := p.ProcessOnce(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Overdue scan failed", log.FieldComponent, log.ComponentReminder, log.FieldError, err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Overdue reminders published", log.FieldComponent, log.ComponentReminder, "count", n)
	}
}

// ProcessOnce runs a single scan and returns how many reminders were sent.
// A failing owner is logged and skipped.
func (p *OverdueProcessor) ProcessOnce(ctx context.Context) (int, error) {
	owners, err := p.store.ListOwnersWithPendingDebts(ctx)
	if err != nil {
		return 0, err
	}
	today := core.DateOf(p.now()).StartOfDay()
	sent := 0
	for _, owner := range owners {
		list, err := p.store.FetchDebtCredits(ctx, owner, nil)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to fetch debt credits",
				log.FieldComponent, log.ComponentReminder,
				log.FieldOwner, owner,
				log.FieldError, err)
			continue
		}
		for _, d := range FindOverdueWith(list, today, p.rule) {
			if !p.shouldNotify(d.ID, today) {
				continue
			}
			if err := p.publisher.PublishDebtOverdue(ctx, amqp.NewDebtOverdueMessage(d)); err != nil {
				fields := log.NewFields().
					WithComponent(log.ComponentReminder).
					WithRecord(owner, string(amqp.KindDebtCredit), d.ID).
					WithAmount(d.Amount.Sen).
					WithError(err)
				slog.ErrorContext(ctx, "Failed to publish overdue reminder", fields.ToSlice()...)
				continue
			}
			p.markNotified(d.ID, today)
			sent++
		}
	}
	return sent, nil
}

func (p *OverdueProcessor) shouldNotify(id string, today core.Date) bool {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()
	return p.notified[id] != today.DayKey()
}

func (p *OverdueProcessor) markNotified(id string, today core.Date) {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()
	p.notified[id] = today.DayKey()
}
