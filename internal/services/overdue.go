// Package services provides business logic and orchestration services.
//
// This file decides which pending debt/credit records are overdue. The rule
// is a strategy so deployments can allow a grace period.
package services

import (
	"slices"

	"dompet/internal/core"
)

// OverdueRule reports whether a record due on due is overdue on today.
// Both dates are compared by calendar day.
type OverdueRule interface {
	IsOverdue(due, today core.Date) bool
}

// StrictRule marks a record overdue from the day after its due date.
type StrictRule struct{}

func (StrictRule) IsOverdue(due, today core.Date) bool {
	return due.CompareDay(today) < 0
}

// GraceRule waits Days extra days after the due date.
type GraceRule struct {
	Days int
}

func (g GraceRule) IsOverdue(due, today core.Date) bool {
	limit := core.DateOf(due.StartOfDay().AddDate(0, 0, g.Days))
	return limit.CompareDay(today) < 0
}

// FindOverdue returns pending records with a due date strictly before
// today, oldest due date first.
func FindOverdue(records []core.DebtCredit, today core.Date) []core.DebtCredit {
	return FindOverdueWith(records, today, StrictRule{})
}

// FindOverdueWith applies rule instead of the strict default. Paid records,
// records without a due date and a zero today never match.
func FindOverdueWith(records []core.DebtCredit, today core.Date, rule OverdueRule) []core.DebtCredit {
	out := []core.DebtCredit{}
	if today.IsZero() {
		return out
	}
	for _, d := range records {
		if !d.IsPending() || !d.HasDueDate() {
			continue
		}
		if rule.IsOverdue(d.DueDate, today) {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b core.DebtCredit) int {
		return a.DueDate.CompareDay(b.DueDate)
	})
	return out
}
