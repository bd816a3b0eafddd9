package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dompet/internal/core"
)

func sampleTx(owner string) core.Transaction {
	return core.Transaction{
		Amount:      core.Rupiah(25000),
		Description: "makan siang",
		Category:    "Makan",
		Date:        core.NewDate(2024, 1, 2),
		Type:        core.Expense,
		OwnerID:     owner,
	}
}

func TestTransactionsCRUD(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	created, err := s.CreateTransaction(ctx, sampleTx("alice"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.FetchTransactions(ctx, "alice", nil)
	if err != nil || len(got) != 1 {
		t.Fatalf("fetch: got=%v err=%v", got, err)
	}

	// Other owners never see alice's records.
	other, _ := s.FetchTransactions(ctx, "bob", nil)
	if len(other) != 0 {
		t.Fatalf("cross-owner leak: %v", other)
	}

	income := core.Income
	onlyIncome, _ := s.FetchTransactions(ctx, "alice", &income)
	if len(onlyIncome) != 0 {
		t.Fatalf("type filter ignored: %v", onlyIncome)
	}

	created.Amount = core.Rupiah(30000)
	created.Type = core.Income
	updated, err := s.UpdateTransaction(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount != core.Rupiah(30000) || updated.Type != core.Expense {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	// Mutating a fetched snapshot does not touch the store.
	got[0].Description = "changed"
	again, _ := s.FetchTransactions(ctx, "alice", nil)
	if again[0].Description != "makan siang" {
		t.Fatalf("snapshot aliasing: %+v", again[0])
	}

	if err := s.DeleteTransaction(ctx, "alice", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = s.DeleteTransaction(ctx, "alice", created.ID)
	var dae *core.DataAccessError
	if !errors.As(err, &dae) || !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found data access error, got %v", err)
	}
}

func TestCreateTransactionValidates(t *testing.T) {
	tx := sampleTx("alice")
	tx.Amount = core.Money{}
	if _, err := New(nil).CreateTransaction(context.Background(), tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestDebtCreditLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	d, err := s.CreateDebtCredit(ctx, core.NewDebtCredit(core.Debt, "alice", core.Rupiah(500), "Budi", "pinjam", core.NewDate(2024, 1, 1), core.Date{}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !d.IsPending() {
		t.Fatal("new record should be pending")
	}

	paid, err := s.MarkDebtCreditPaid(ctx, "alice", d.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status() != core.StatusPaid || paid.PaidAt().IsZero() {
		t.Fatalf("unexpected paid record: %+v", paid)
	}

	if _, err := s.MarkDebtCreditPaid(ctx, "alice", d.ID, time.Now()); !errors.Is(err, core.ErrAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}

	// Updating a paid record keeps it paid.
	paid.Amount = core.Rupiah(600)
	upd, err := s.UpdateDebtCredit(ctx, paid)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.IsPending() || upd.Amount != core.Rupiah(600) {
		t.Fatalf("unexpected update: %+v", upd)
	}

	if _, err := s.MarkDebtCreditPaid(ctx, "bob", d.ID, time.Now()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for other owner, got %v", err)
	}
	if err := s.DeleteDebtCredit(ctx, "alice", d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := New(map[core.TransactionType][]string{core.Expense: {"A", "B", "A"}})

	cats, err := s.ListCategories(ctx, "alice", core.Expense)
	if err != nil || len(cats) != 2 {
		t.Fatalf("unexpected seeds: %v err=%v", cats, err)
	}
	if err := s.AddCategory(ctx, "alice", core.Expense, "C"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddCategory(ctx, "alice", core.Expense, "C"); err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	cats, _ = s.ListCategories(ctx, "alice", core.Expense)
	if len(cats) != 3 || cats[2] != "C" {
		t.Fatalf("unexpected categories: %v", cats)
	}
	bobCats, _ := s.ListCategories(ctx, "bob", core.Expense)
	if len(bobCats) != 2 {
		t.Fatalf("bob sees alice's category: %v", bobCats)
	}
	if err := s.AddCategory(ctx, "alice", core.Expense, "  "); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected empty category error, got %v", err)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background(), "x", core.Income)
	if len(cats) == 0 {
		t.Fatalf("expected defaults when files missing")
	}

	content := "# header\nGaji\nBonus\nGaji\n\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_income_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background(), "x", core.Income)
	if len(cats) != 2 || cats[0] != "Gaji" || cats[1] != "Bonus" {
		t.Fatalf("unexpected cats: %v", cats)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).FetchTransactions(ctx, "alice", nil)
	if !core.IsDataAccess(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected wrapped cancellation, got %v", err)
	}
}

func TestStoredDatesUseWallClockDay(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	wib := time.FixedZone("WIB", 7*3600)

	tx := sampleTx("alice")
	tx.Date = core.Date{Time: time.Date(2024, 1, 2, 1, 0, 0, 0, wib)}
	created, err := s.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatal(err)
	}
	if created.Date.Location() != time.UTC || created.Date.DayKey() != "2024-01-02" {
		t.Fatalf("stored date = %v", created.Date)
	}

	due := core.Date{Time: time.Date(2024, 2, 1, 6, 0, 0, 0, wib)}
	d, err := s.CreateDebtCredit(ctx, core.NewDebtCredit(core.Debt, "alice", core.Rupiah(10), "Budi", "pinjam", core.NewDate(2024, 1, 1), due))
	if err != nil {
		t.Fatal(err)
	}
	if d.DueDate.Location() != time.UTC || d.DueDate.DayKey() != "2024-02-01" {
		t.Fatalf("stored due date = %v", d.DueDate)
	}
}
