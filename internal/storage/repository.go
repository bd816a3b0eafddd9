package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dompet/internal/core"
	"dompet/internal/records"

	_ "modernc.org/sqlite"
)

// timeLayout is how dates are persisted. Rows are read back through
// core.ParseRecordDate, so older rows in any supported form still load.
const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	seeds   map[core.TransactionType][]string
}

var _ records.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		seeds:   records.DefaultCategories,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) FetchTransactions(ctx context.Context, owner string, typ *core.TransactionType) ([]core.Transaction, error) {
	var filter string
	if typ != nil {
		filter = string(*typ)
	}
	rows, err := r.queries.ListTransactions(ctx, owner, filter)
	if err != nil {
		return nil, core.NewDataAccessError("fetch transactions", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTransaction(ctx, row))
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	if err := r.queries.CreateTransaction(ctx, fromTransaction(tx)); err != nil {
		return core.Transaction{}, core.NewDataAccessError("create transaction", err)
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"amount_sen", tx.Amount.Sen)
	return tx, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	cur, err := r.queries.GetTransaction(ctx, tx.OwnerID, tx.ID)
	if err != nil {
		return core.Transaction{}, notFoundOr("update transaction", err)
	}
	tx.Type = core.TransactionType(cur.Type)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n, err := r.queries.UpdateTransaction(ctx, fromTransaction(tx))
	if err != nil {
		return core.Transaction{}, core.NewDataAccessError("update transaction", err)
	}
	if n == 0 {
		return core.Transaction{}, core.NewDataAccessError("update transaction", core.ErrNotFound)
	}
	return tx, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, owner, id)
	if err != nil {
		return core.NewDataAccessError("delete transaction", err)
	}
	if n == 0 {
		return core.NewDataAccessError("delete transaction", core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) FetchDebtCredits(ctx context.Context, owner string, kind *core.DebtKind) ([]core.DebtCredit, error) {
	var filter string
	if kind != nil {
		filter = string(*kind)
	}
	rows, err := r.queries.ListDebtCredits(ctx, owner, filter)
	if err != nil {
		return nil, core.NewDataAccessError("fetch debt credits", err)
	}
	out := make([]core.DebtCredit, 0, len(rows))
	for _, row := range rows {
		d, err := toDebtCredit(ctx, row)
		if err != nil {
			return nil, core.NewDataAccessError("fetch debt credits", err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error) {
	if err := d.Validate(); err != nil {
		return core.DebtCredit{}, err
	}
	d = core.NewDebtCredit(d.Kind, d.OwnerID, d.Amount, d.Counterparty, d.Description, d.Date, d.DueDate)
	d.ID = uuid.NewString()
	if err := r.queries.CreateDebtCredit(ctx, fromDebtCredit(d)); err != nil {
		return core.DebtCredit{}, core.NewDataAccessError("create debt credit", err)
	}
	slog.DebugContext(ctx, "Debt credit saved to SQLite",
		"id", d.ID,
		"kind", d.Kind,
		"amount_sen", d.Amount.Sen)
	return d, nil
}

func (r *SQLiteRepository) UpdateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error) {
	row, err := r.queries.GetDebtCredit(ctx, d.OwnerID, d.ID)
	if err != nil {
		return core.DebtCredit{}, notFoundOr("update debt credit", err)
	}
	cur, err := toDebtCredit(ctx, row)
	if err != nil {
		return core.DebtCredit{}, core.NewDataAccessError("update debt credit", err)
	}
	cur.Amount = d.Amount
	cur.Description = d.Description
	cur.Counterparty = d.Counterparty
	cur.DueDate = d.DueDate
	if err := cur.Validate(); err != nil {
		return core.DebtCredit{}, err
	}
	if _, err := r.queries.UpdateDebtCredit(ctx, fromDebtCredit(cur)); err != nil {
		return core.DebtCredit{}, core.NewDataAccessError("update debt credit", err)
	}
	return cur, nil
}

func (r *SQLiteRepository) DeleteDebtCredit(ctx context.Context, owner, id string) error {
	n, err := r.queries.DeleteDebtCredit(ctx, owner, id)
	if err != nil {
		return core.NewDataAccessError("delete debt credit", err)
	}
	if n == 0 {
		return core.NewDataAccessError("delete debt credit", core.ErrNotFound)
	}
	return nil
}

// MarkDebtCreditPaid loads the record, applies the domain transition and
// persists it in one database transaction.
func (r *SQLiteRepository) MarkDebtCreditPaid(ctx context.Context, owner, id string, at time.Time) (core.DebtCredit, error) {
	const op = "mark debt credit paid"
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.DebtCredit{}, core.NewDataAccessError(op, err)
	}
	defer sqlTx.Rollback()
	q := r.queries.WithTx(sqlTx)

	row, err := q.GetDebtCredit(ctx, owner, id)
	if err != nil {
		return core.DebtCredit{}, notFoundOr(op, err)
	}
	cur, err := toDebtCredit(ctx, row)
	if err != nil {
		return core.DebtCredit{}, core.NewDataAccessError(op, err)
	}
	paid, err := cur.MarkPaid(at)
	if err != nil {
		return cur, err
	}
	n, err := q.MarkDebtCreditPaid(ctx, paid.PaidAt().Canonical().Format(timeLayout), owner, id)
	if err != nil {
		return core.DebtCredit{}, core.NewDataAccessError(op, err)
	}
	if n == 0 {
		return cur, core.ErrAlreadyPaid
	}
	if err := sqlTx.Commit(); err != nil {
		return core.DebtCredit{}, core.NewDataAccessError(op, err)
	}

	slog.InfoContext(ctx, "Debt credit marked as paid", "id", id, "kind", paid.Kind)
	return paid, nil
}

func (r *SQLiteRepository) ListOwnersWithPendingDebts(ctx context.Context) ([]string, error) {
	owners, err := r.queries.ListOwnersWithPendingDebts(ctx)
	if err != nil {
		return nil, core.NewDataAccessError("list owners", err)
	}
	return owners, nil
}

// ListCategories returns the owner's categories, or the seeds when the
// owner has not stored any yet.
func (r *SQLiteRepository) ListCategories(ctx context.Context, owner string, typ core.TransactionType) ([]string, error) {
	names, err := r.queries.ListCategories(ctx, owner, string(typ))
	if err != nil {
		return nil, core.NewDataAccessError("list categories", err)
	}
	if len(names) == 0 {
		return append([]string(nil), r.seeds[typ]...), nil
	}
	return names, nil
}

// AddCategory appends name to the owner's set. The first write copies the
// seeds in so the owner keeps them.
func (r *SQLiteRepository) AddCategory(ctx context.Context, owner string, typ core.TransactionType, name string) error {
	const op = "add category"
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	if !typ.IsValid() {
		return core.ErrInvalidType
	}
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewDataAccessError(op, err)
	}
	defer sqlTx.Rollback()
	q := r.queries.WithTx(sqlTx)

	existing, err := q.ListCategories(ctx, owner, string(typ))
	if err != nil {
		return core.NewDataAccessError(op, err)
	}
	var names []string
	if len(existing) == 0 {
		names = append(names, r.seeds[typ]...)
	}
	names = append(names, name)
	for _, n := range names {
		if err := q.InsertCategory(ctx, owner, string(typ), n); err != nil {
			return core.NewDataAccessError(op, err)
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return core.NewDataAccessError(op, err)
	}
	return nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewDataAccessError(op, core.ErrNotFound)
	}
	return core.NewDataAccessError(op, err)
}

func fromTransaction(tx core.Transaction) Transaction {
	return Transaction{
		ID:          tx.ID,
		OwnerID:     tx.OwnerID,
		Type:        string(tx.Type),
		AmountSen:   tx.Amount.Sen,
		Description: tx.Description,
		Category:    tx.Category,
		OccurredAt:  tx.Date.Canonical().Format(timeLayout),
	}
}

// toTransaction never fails: an unreadable date becomes the zero Date and
// the record is later counted as skipped by the range filter.
func toTransaction(ctx context.Context, row Transaction) core.Transaction {
	date, err := core.ParseRecordDate(row.OccurredAt)
	if err != nil {
		slog.WarnContext(ctx, "Unreadable transaction date", "id", row.ID, "error", err)
	}
	return core.Transaction{
		ID:          row.ID,
		Amount:      core.Money{Sen: row.AmountSen},
		Description: row.Description,
		Category:    row.Category,
		Date:        date,
		Type:        core.TransactionType(row.Type),
		OwnerID:     row.OwnerID,
	}
}

func fromDebtCredit(d core.DebtCredit) DebtCredit {
	row := DebtCredit{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Kind:         string(d.Kind),
		AmountSen:    d.Amount.Sen,
		Description:  d.Description,
		Counterparty: d.Counterparty,
		CreatedOn:    d.Date.Canonical().Format(timeLayout),
		Status:       string(d.Status()),
	}
	if d.HasDueDate() {
		row.DueDate = sql.NullString{String: d.DueDate.Canonical().Format(timeLayout), Valid: true}
	}
	if !d.PaidAt().IsZero() {
		row.PaidAt = sql.NullString{String: d.PaidAt().Canonical().Format(timeLayout), Valid: true}
	}
	return row
}

func toDebtCredit(ctx context.Context, row DebtCredit) (core.DebtCredit, error) {
	created, err := core.ParseRecordDate(row.CreatedOn)
	if err != nil {
		slog.WarnContext(ctx, "Unreadable debt credit date", "id", row.ID, "error", err)
	}
	d := core.DebtCredit{
		ID:           row.ID,
		Amount:       core.Money{Sen: row.AmountSen},
		Description:  row.Description,
		Counterparty: row.Counterparty,
		Date:         created,
		Kind:         core.DebtKind(row.Kind),
		OwnerID:      row.OwnerID,
	}
	if row.DueDate.Valid {
		if d.DueDate, err = core.ParseRecordDate(row.DueDate.String); err != nil {
			slog.WarnContext(ctx, "Unreadable debt credit due date", "id", row.ID, "error", err)
		}
	}
	var paidAt core.Date
	if row.PaidAt.Valid {
		if paidAt, err = core.ParseRecordDate(row.PaidAt.String); err != nil {
			slog.WarnContext(ctx, "Unreadable debt credit paid date", "id", row.ID, "error", err)
		}
	}
	return core.LoadDebtCredit(d, core.DebtStatus(row.Status), paidAt)
}
