package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Transaction struct {
	ID          string
	OwnerID     string
	Type        string
	AmountSen   int64
	Description string
	Category    string
	OccurredAt  string
}

type DebtCredit struct {
	ID           string
	OwnerID      string
	Kind         string
	AmountSen    int64
	Description  string
	Counterparty string
	CreatedOn    string
	DueDate      sql.NullString
	Status       string
	PaidAt       sql.NullString
}

const createTransaction = `
INSERT INTO transactions (id, owner_id, type, amount_sen, description, category, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.OwnerID, arg.Type, arg.AmountSen, arg.Description, arg.Category, arg.OccurredAt)
	return err
}

const getTransaction = `
SELECT id, owner_id, type, amount_sen, description, category, occurred_at
FROM transactions WHERE owner_id = ? AND id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, ownerID, id string) (Transaction, error) {
	var t Transaction
	err := q.db.QueryRowContext(ctx, getTransaction, ownerID, id).Scan(
		&t.ID, &t.OwnerID, &t.Type, &t.AmountSen, &t.Description, &t.Category, &t.OccurredAt)
	return t, err
}

const listTransactions = `
SELECT id, owner_id, type, amount_sen, description, category, occurred_at
FROM transactions
WHERE owner_id = ? AND (? = '' OR type = ?)
ORDER BY rowid
`

func (q *Queries) ListTransactions(ctx context.Context, ownerID, typ string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, ownerID, typ, typ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Type, &t.AmountSen, &t.Description, &t.Category, &t.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTransaction = `
UPDATE transactions
SET amount_sen = ?, description = ?, category = ?, occurred_at = ?, updated_at = CURRENT_TIMESTAMP
WHERE owner_id = ? AND id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.AmountSen, arg.Description, arg.Category, arg.OccurredAt, arg.OwnerID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE owner_id = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, ownerID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, ownerID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createDebtCredit = `
INSERT INTO debt_credits (id, owner_id, kind, amount_sen, description, counterparty, created_on, due_date, status, paid_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateDebtCredit(ctx context.Context, arg DebtCredit) error {
	_, err := q.db.ExecContext(ctx, createDebtCredit,
		arg.ID, arg.OwnerID, arg.Kind, arg.AmountSen, arg.Description, arg.Counterparty,
		arg.CreatedOn, arg.DueDate, arg.Status, arg.PaidAt)
	return err
}

const debtCreditColumns = `id, owner_id, kind, amount_sen, description, counterparty, created_on, due_date, status, paid_at`

func scanDebtCredit(row interface{ Scan(...any) error }) (DebtCredit, error) {
	var d DebtCredit
	err := row.Scan(&d.ID, &d.OwnerID, &d.Kind, &d.AmountSen, &d.Description, &d.Counterparty,
		&d.CreatedOn, &d.DueDate, &d.Status, &d.PaidAt)
	return d, err
}

const getDebtCredit = `SELECT ` + debtCreditColumns + ` FROM debt_credits WHERE owner_id = ? AND id = ?`

func (q *Queries) GetDebtCredit(ctx context.Context, ownerID, id string) (DebtCredit, error) {
	return scanDebtCredit(q.db.QueryRowContext(ctx, getDebtCredit, ownerID, id))
}

const listDebtCredits = `
SELECT ` + debtCreditColumns + ` FROM debt_credits
WHERE owner_id = ? AND (? = '' OR kind = ?)
ORDER BY rowid
`

func (q *Queries) ListDebtCredits(ctx context.Context, ownerID, kind string) ([]DebtCredit, error) {
	rows, err := q.db.QueryContext(ctx, listDebtCredits, ownerID, kind, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DebtCredit
	for rows.Next() {
		d, err := scanDebtCredit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const updateDebtCredit = `
UPDATE debt_credits
SET amount_sen = ?, description = ?, counterparty = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
WHERE owner_id = ? AND id = ?
`

func (q *Queries) UpdateDebtCredit(ctx context.Context, arg DebtCredit) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateDebtCredit,
		arg.AmountSen, arg.Description, arg.Counterparty, arg.DueDate, arg.OwnerID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markDebtCreditPaid = `
UPDATE debt_credits
SET status = 'paid', paid_at = ?, updated_at = CURRENT_TIMESTAMP
WHERE owner_id = ? AND id = ? AND status = 'pending'
`

func (q *Queries) MarkDebtCreditPaid(ctx context.Context, paidAt, ownerID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markDebtCreditPaid, paidAt, ownerID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteDebtCredit = `DELETE FROM debt_credits WHERE owner_id = ? AND id = ?`

func (q *Queries) DeleteDebtCredit(ctx context.Context, ownerID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteDebtCredit, ownerID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listOwnersWithPendingDebts = `
SELECT DISTINCT owner_id FROM debt_credits WHERE status = 'pending' ORDER BY owner_id
`

func (q *Queries) ListOwnersWithPendingDebts(ctx context.Context) ([]string, error) {
	return q.strings(ctx, listOwnersWithPendingDebts)
}

const listCategories = `
SELECT name FROM categories WHERE owner_id = ? AND type = ? ORDER BY position
`

func (q *Queries) ListCategories(ctx context.Context, ownerID, typ string) ([]string, error) {
	return q.strings(ctx, listCategories, ownerID, typ)
}

const insertCategory = `
INSERT INTO categories (owner_id, type, name, position)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM categories WHERE owner_id = ? AND type = ?))
ON CONFLICT (owner_id, type, name) DO NOTHING
`

func (q *Queries) InsertCategory(ctx context.Context, ownerID, typ, name string) error {
	_, err := q.db.ExecContext(ctx, insertCategory, ownerID, typ, name, ownerID, typ)
	return err
}

func (q *Queries) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
