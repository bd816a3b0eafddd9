// Package ledger holds the pure aggregation and date-range logic applied to
// a snapshot of an owner's records. Nothing here performs I/O or keeps
// state between calls.
package ledger

import (
	"cmp"
	"fmt"
	"slices"

	"dompet/internal/core"
)

// ComputeBalanceSummary sums income and expense amounts. Records with an
// unknown type count toward neither total.
func ComputeBalanceSummary(txs []core.Transaction) core.BalanceSummary {
	var s core.BalanceSummary
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// ComputeOutstanding sums what is still owed. Paid records are ignored.
func ComputeOutstanding(records []core.DebtCredit) core.Outstanding {
	var o core.Outstanding
	for _, r := range records {
		if !r.IsPending() {
			continue
		}
		switch r.Kind {
		case core.Debt:
			o.TotalDebt = o.TotalDebt.Add(r.Amount)
		case core.Credit:
			o.TotalCredit = o.TotalCredit.Add(r.Amount)
		}
	}
	return o
}

// SelectRecent returns the n most recent transactions, newest first. Equal
// dates keep their input order; malformed dates sort last. The input slice
// is not modified.
func SelectRecent(txs []core.Transaction, n int) ([]core.Transaction, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must not be negative, got %d", core.ErrInvalidArgument, n)
	}
	sorted := SortByDateDesc(txs)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

// SortByDateDesc returns a copy of records ordered newest first, keeping
// input order for equal timestamps and putting malformed dates last.
func SortByDateDesc[T Dated](records []T) []T {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b T) int {
		da, db := a.RecordDate(), b.RecordDate()
		switch {
		case da.IsZero() && db.IsZero():
			return 0
		case da.IsZero():
			return 1
		case db.IsZero():
			return -1
		}
		return db.Compare(da.Time)
	})
	return out
}

// SummarizeByCategory totals transactions of one type per category,
// largest amount first and then by name.
func SummarizeByCategory(txs []core.Transaction, typ core.TransactionType) []core.CategoryAmount {
	byName := map[string]*core.CategoryAmount{}
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		ca, ok := byName[tx.Category]
		if !ok {
			ca = &core.CategoryAmount{Name: tx.Category}
			byName[tx.Category] = ca
		}
		ca.Amount = ca.Amount.Add(tx.Amount)
		ca.Count++
	}

	out := make([]core.CategoryAmount, 0, len(byName))
	for _, ca := range byName {
		out = append(out, *ca)
	}
	slices.SortFunc(out, func(a, b core.CategoryAmount) int {
		if c := cmp.Compare(b.Amount.Sen, a.Amount.Sen); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
