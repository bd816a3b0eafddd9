// Package sheets renders ledger snapshots for spreadsheet export.
package sheets

import (
	"context"
	"strings"
	"time"

	"dompet/internal/core"
)

type (
	// Snapshot is the full ledger of one owner at a point in time.
	Snapshot struct {
		Owner        string
		Transactions []core.Transaction
		DebtCredits  []core.DebtCredit
		TakenAt      time.Time
	}

	// Exporter replaces the owner's exported ledger with snap.
	Exporter interface {
		Export(ctx context.Context, snap Snapshot) error
	}
)

var (
	TransactionHeader = []any{"Tanggal", "Jenis", "Kategori", "Keterangan", "Jumlah"}
	DebtHeader        = []any{"Tanggal", "Jenis", "Pihak", "Keterangan", "Jumlah", "Jatuh Tempo", "Status", "Lunas Pada"}
)

// TransactionRows renders the header followed by one row per transaction.
// Amounts are written as plain rupiah numbers so the sheet can sum them.
func TransactionRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, TransactionHeader)
	for _, t := range txs {
		rows = append(rows, []any{
			dayOrEmpty(t.Date),
			string(t.Type),
			t.Category,
			t.Description,
			t.Amount.Float(),
		})
	}
	return rows
}

// DebtRows renders the header followed by one row per debt or credit.
func DebtRows(ds []core.DebtCredit) [][]any {
	rows := make([][]any, 0, len(ds)+1)
	rows = append(rows, DebtHeader)
	for _, d := range ds {
		rows = append(rows, []any{
			dayOrEmpty(d.Date),
			string(d.Kind),
			d.Counterparty,
			d.Description,
			d.Amount.Float(),
			dayOrEmpty(d.DueDate),
			string(d.Status()),
			dayOrEmpty(d.PaidAt()),
		})
	}
	return rows
}

// TabNames returns the transaction and debt tab titles for owner.
// Characters the Sheets API rejects in titles are replaced.
func TabNames(owner string) (transactions, debts string) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '?', '/', '\\', ':', '\'':
			return '_'
		}
		return r
	}, owner)
	if r := []rune(clean); len(r) > 80 {
		clean = string(r[:80])
	}
	return clean + " Transaksi", clean + " Hutang"
}

func dayOrEmpty(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.DayKey()
}
