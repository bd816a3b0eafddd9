package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Debt   DebtKind = "debt"   // hutang: the owner owes the counterparty
	Credit DebtKind = "credit" // piutang: the counterparty owes the owner
)

const (
	StatusPending DebtStatus = "pending"
	StatusPaid    DebtStatus = "paid" // lunas, terminal
)

const maxDescriptionLen = 200

type (
	TransactionType string
	DebtKind        string
	DebtStatus      string

	Transaction struct {
		ID          string
		Amount      Money
		Description string
		Category    string
		Date        Date
		Type        TransactionType
		OwnerID     string
	}

	// DebtCredit is a hutang/piutang entry. Its status can only move from
	// pending to paid through MarkPaid.
	DebtCredit struct {
		ID           string
		Amount       Money
		Description  string
		Counterparty string
		Date         Date // creation time
		DueDate      Date // zero when no due date was set
		Kind         DebtKind
		OwnerID      string

		status DebtStatus
		paidAt Date
	}
)

// ParseTransactionType accepts "income" or "expense" in any letter case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: transaction type %q", ErrInvalidType, s)
	}
	return t, nil
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// ParseDebtKind accepts "debt" or "credit" in any letter case.
func ParseDebtKind(s string) (DebtKind, error) {
	k := DebtKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: debt kind %q", ErrInvalidType, s)
	}
	return k, nil
}

func (k DebtKind) IsValid() bool {
	return k == Debt || k == Credit
}

func (s DebtStatus) IsValid() bool {
	return s == StatusPending || s == StatusPaid
}

func (t Transaction) RecordDate() Date    { return t.Date }
func (t Transaction) RecordAmount() Money { return t.Amount }

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidType, t.Type)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	return nil
}

// NewDebtCredit returns a pending record. Fields are not validated here;
// call Validate before persisting.
func NewDebtCredit(kind DebtKind, owner string, amount Money, counterparty, description string, created Date, due Date) DebtCredit {
	return DebtCredit{
		Amount:       amount,
		Description:  description,
		Counterparty: counterparty,
		Date:         created,
		DueDate:      due,
		Kind:         kind,
		OwnerID:      owner,
		status:       StatusPending,
	}
}

// LoadDebtCredit rehydrates a stored record with its persisted status.
// Stores call it when reading rows back; it rejects unknown statuses and a
// pending status that carries a payment time.
func LoadDebtCredit(d DebtCredit, status DebtStatus, paidAt Date) (DebtCredit, error) {
	if !status.IsValid() {
		return DebtCredit{}, fmt.Errorf("%w: debt status %q", ErrInvalidType, status)
	}
	if status == StatusPending && !paidAt.IsZero() {
		return DebtCredit{}, fmt.Errorf("%w: pending record with paid time", ErrInvalidArgument)
	}
	d.status = status
	d.paidAt = paidAt
	return d, nil
}

func (d DebtCredit) Status() DebtStatus {
	if d.status == "" {
		return StatusPending
	}
	return d.status
}

func (d DebtCredit) IsPending() bool { return d.Status() == StatusPending }

// PaidAt is zero while the record is pending.
func (d DebtCredit) PaidAt() Date { return d.paidAt }

func (d DebtCredit) HasDueDate() bool { return !d.DueDate.IsZero() }

// MarkPaid returns the settled copy of a pending record.
func (d DebtCredit) MarkPaid(at time.Time) (DebtCredit, error) {
	if !d.IsPending() {
		return d, ErrAlreadyPaid
	}
	d.status = StatusPaid
	d.paidAt = DateOf(at)
	return d, nil
}

func (d DebtCredit) RecordDate() Date    { return d.Date }
func (d DebtCredit) RecordAmount() Money { return d.Amount }

func (d DebtCredit) Validate() error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: debt kind %q", ErrInvalidType, d.Kind)
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if d.HasDueDate() {
		if err := d.DueDate.Validate(); err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}
	}
	if err := validateDescription(d.Description); err != nil {
		return err
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Counterparty) == "" {
		return ErrEmptyCounterparty
	}
	if strings.TrimSpace(d.OwnerID) == "" {
		return ErrEmptyOwner
	}
	return nil
}

func validateDescription(s string) error {
	if len(strings.TrimSpace(s)) == 0 {
		return ErrEmptyDescription
	}
	if len(s) > maxDescriptionLen {
		return fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidArgument, maxDescriptionLen)
	}
	return nil
}
