package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrMalformedDate) {
			t.Fatalf("case %d expected ErrMalformedDate, got %v", i, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:      Rupiah(100),
		Description: "gaji",
		Category:    "Gaji",
		Date:        NewDate(2025, 1, 1),
		Type:        Income,
		OwnerID:     "u1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrMalformedDate},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Sen: -1} }, ErrInvalidAmount},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"no owner", func(tx *Transaction) { tx.OwnerID = "" }, ErrEmptyOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := good
			tt.mut(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDebtCreditMarkPaid(t *testing.T) {
	d := NewDebtCredit(Debt, "u1", Rupiah(500), "Budi", "pinjam", NewDate(2024, 1, 1), Date{})
	if d.Status() != StatusPending || !d.IsPending() {
		t.Fatalf("new record should be pending, got %s", d.Status())
	}
	if d.HasDueDate() {
		t.Fatalf("expected no due date")
	}

	at := time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)
	paid, err := d.MarkPaid(at)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status() != StatusPaid || !paid.PaidAt().Equal(at) {
		t.Fatalf("unexpected paid record: status=%s paidAt=%v", paid.Status(), paid.PaidAt())
	}
	// the original value is untouched
	if !d.IsPending() {
		t.Fatalf("MarkPaid must not mutate the receiver")
	}

	if _, err := paid.MarkPaid(at); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("second MarkPaid = %v, want ErrAlreadyPaid", err)
	}
}

func TestLoadDebtCredit(t *testing.T) {
	base := NewDebtCredit(Credit, "u1", Rupiah(10), "Sari", "makan", NewDate(2024, 1, 1), NewDate(2024, 2, 1))

	paid, err := LoadDebtCredit(base, StatusPaid, NewDate(2024, 1, 20))
	if err != nil || paid.IsPending() {
		t.Fatalf("expected paid record, got %v err=%v", paid.Status(), err)
	}
	if _, err := LoadDebtCredit(base, "lost", Date{}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("unknown status: got %v", err)
	}
	if _, err := LoadDebtCredit(base, StatusPending, NewDate(2024, 1, 20)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("pending with paid time: got %v", err)
	}
}

func TestDebtCreditValidate(t *testing.T) {
	good := NewDebtCredit(Debt, "u1", Rupiah(50), "Budi", "pinjam", NewDate(2024, 1, 1), Date{})
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noName := good
	noName.Counterparty = " "
	if err := noName.Validate(); !errors.Is(err, ErrEmptyCounterparty) {
		t.Fatalf("got %v, want ErrEmptyCounterparty", err)
	}
	badKind := good
	badKind.Kind = "gift"
	if err := badKind.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("got %v, want ErrInvalidType", err)
	}
}

func TestParseEnums(t *testing.T) {
	if typ, err := ParseTransactionType(" Income "); err != nil || typ != Income {
		t.Fatalf("ParseTransactionType = %q, %v", typ, err)
	}
	if _, err := ParseTransactionType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if kind, err := ParseDebtKind("CREDIT"); err != nil || kind != Credit {
		t.Fatalf("ParseDebtKind = %q, %v", kind, err)
	}
}

func TestDataAccessError(t *testing.T) {
	if NewDataAccessError("fetch", nil) != nil {
		t.Fatal("nil cause should stay nil")
	}
	err := NewDataAccessError("fetch", ErrNotFound)
	if !IsDataAccess(err) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped not found, got %v", err)
	}
	again := NewDataAccessError("outer", err)
	var dae *DataAccessError
	if !errors.As(again, &dae) || dae.Op != "fetch" {
		t.Fatalf("expected no double wrapping, got %v", again)
	}
}
