package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/records/memory"
)

func debt(id string, due core.Date) core.DebtCredit {
	d := core.NewDebtCredit(core.Debt, "alice", core.Rupiah(100), "Budi", id, core.NewDate(2024, 1, 1), due)
	d.ID = id
	return d
}

func TestStrictRule_IsOverdue(t *testing.T) {
	today := core.NewDate(2024, 1, 15)

	tests := []struct {
		name string
		due  core.Date
		want bool
	}{
		{name: "due yesterday - overdue", due: core.NewDate(2024, 1, 14), want: true},
		{name: "due today - not overdue", due: core.DateOf(time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)), want: false},
		{name: "due tomorrow - not overdue", due: core.NewDate(2024, 1, 16), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (StrictRule{}).IsOverdue(tt.due, today); got != tt.want {
				t.Errorf("StrictRule.IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGraceRule_IsOverdue(t *testing.T) {
	rule := GraceRule{Days: 3}
	today := core.NewDate(2024, 1, 15)

	if rule.IsOverdue(core.NewDate(2024, 1, 12), today) {
		t.Error("due 3 days ago should still be within grace")
	}
	if !rule.IsOverdue(core.NewDate(2024, 1, 11), today) {
		t.Error("due 4 days ago should be overdue")
	}
}

func TestFindOverdue(t *testing.T) {
	today := core.NewDate(2024, 1, 15)
	paid, err := debt("paid", core.NewDate(2024, 1, 1)).MarkPaid(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	in := []core.DebtCredit{
		debt("late", core.NewDate(2024, 1, 10)),
		debt("later", core.NewDate(2024, 1, 2)),
		debt("future", core.NewDate(2024, 2, 1)),
		debt("nodue", core.Date{}),
		paid,
	}

	got := FindOverdue(in, today)
	if len(got) != 2 {
		t.Fatalf("FindOverdue() returned %d records, want 2", len(got))
	}
	if got[0].ID != "later" || got[1].ID != "late" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}

	if got := FindOverdue(in, core.Date{}); len(got) != 0 {
		t.Errorf("zero today should match nothing, got %d", len(got))
	}
}

type overdueRecorder struct {
	mu   sync.Mutex
	msgs []*amqp.DebtOverdueMessage
}

func (r *overdueRecorder) PublishDebtOverdue(_ context.Context, msg *amqp.DebtOverdueMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestOverdueProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	for _, d := range []core.DebtCredit{
		core.NewDebtCredit(core.Debt, "alice", core.Rupiah(100), "Budi", "a", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 10)),
		core.NewDebtCredit(core.Credit, "bob", core.Rupiah(50), "Sari", "b", core.NewDate(2024, 1, 1), core.NewDate(2024, 3, 1)),
	} {
		if _, err := store.CreateDebtCredit(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	pub := &overdueRecorder{}
	p := NewOverdueProcessor(store, pub, time.Hour)
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	n, err := p.ProcessOnce(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ProcessOnce() = %d, %v; want 1", n, err)
	}
	if pub.msgs[0].Owner != "alice" || pub.msgs[0].DueDate != "2024-01-10" {
		t.Errorf("unexpected message: %+v", pub.msgs[0])
	}

	// Same day: no duplicate reminder.
	if n, _ := p.ProcessOnce(ctx); n != 0 {
		t.Errorf("second scan on same day sent %d reminders", n)
	}

	// Next day: remind again.
	now = now.Add(24 * time.Hour)
	if n, _ := p.ProcessOnce(ctx); n != 1 {
		t.Errorf("scan on next day sent %d reminders, want 1", n)
	}
}

func TestOverdueProcessor_StartStop(t *testing.T) {
	p := NewOverdueProcessor(memory.New(nil), &overdueRecorder{}, time.Hour)
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if !p.IsRunning() {
		t.Error("processor should be running")
	}
	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if p.IsRunning() {
		t.Error("processor should be stopped")
	}
}
