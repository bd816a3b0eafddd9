// Package records defines the ports a record store implements. Every
// method is keyed by owner id and every failure is reported as a
// *core.DataAccessError.
package records

import (
	"context"
	"time"

	"dompet/internal/core"
)

type (
	// TransactionReader returns a snapshot of an owner's transactions. A
	// nil typ fetches both types.
	TransactionReader interface {
		FetchTransactions(ctx context.Context, owner string, typ *core.TransactionType) ([]core.Transaction, error)
	}

	// TransactionWriter mutates transactions. Update may change amount,
	// description, category and date; id, type and owner stay fixed.
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, owner, id string) error
	}

	// DebtCreditReader returns a snapshot of an owner's debt/credit
	// records. A nil kind fetches both kinds.
	DebtCreditReader interface {
		FetchDebtCredits(ctx context.Context, owner string, kind *core.DebtKind) ([]core.DebtCredit, error)
	}

	// DebtCreditWriter mutates debt/credit records. Update may change
	// amount, description, counterparty and due date and never touches
	// the status; MarkPaid is the only way to settle a record.
	DebtCreditWriter interface {
		CreateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error)
		UpdateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error)
		DeleteDebtCredit(ctx context.Context, owner, id string) error
		MarkDebtCreditPaid(ctx context.Context, owner, id string, at time.Time) (core.DebtCredit, error)
	}

	// CategoryStore keeps the free-growing category set of each owner,
	// one set per transaction type.
	CategoryStore interface {
		ListCategories(ctx context.Context, owner string, typ core.TransactionType) ([]string, error)
		AddCategory(ctx context.Context, owner string, typ core.TransactionType, name string) error
	}

	// OwnerLister lets background jobs walk the owners that still have
	// pending debt/credit records.
	OwnerLister interface {
		ListOwnersWithPendingDebts(ctx context.Context) ([]string, error)
	}

	// Store is the full set of ports a backend provides.
	Store interface {
		TransactionReader
		TransactionWriter
		DebtCreditReader
		DebtCreditWriter
		CategoryStore
		OwnerLister
		Close() error
	}
)

// DefaultCategories seeds a new owner's category set, per type.
var DefaultCategories = map[core.TransactionType][]string{
	core.Income:  {"Gaji", "Bonus", "Hadiah", "Investasi"},
	core.Expense: {"Makan", "Transportasi", "Belanja", "Tagihan", "Hiburan"},
}
