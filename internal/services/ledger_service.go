package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/records"
)

// RecentCount is how many transactions the dashboard lists.
const RecentCount = 5

// EventPublisher announces ledger changes. Publishing is best effort.
type EventPublisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// Store is the subset of record ports the service needs.
type Store interface {
	records.TransactionReader
	records.TransactionWriter
	records.DebtCreditReader
	records.DebtCreditWriter
	records.CategoryStore
}

type (
	// DashboardView is the home screen model. Skipped counts records whose
	// date could not be read; they still count toward the totals.
	DashboardView struct {
		Summary           core.BalanceSummary   `json:"summary"`
		Outstanding       core.Outstanding      `json:"outstanding"`
		Recent            []core.Transaction    `json:"recent"`
		ExpenseByCategory []core.CategoryAmount `json:"expense_by_category"`
		Skipped           int                   `json:"skipped"`
	}

	// RangeView is a filtered transaction list, newest first.
	RangeView struct {
		Type     *core.TransactionType
		Range    ledger.Range
		Records  []core.Transaction
		Total    core.Money
		Earliest *core.Date
		Skipped  int
	}

	// CalendarView lists the highlighted days of one month.
	CalendarView struct {
		Type    *core.TransactionType
		Year    int
		Month   int
		Days    []int
		Skipped int
	}

	// DebtsView lists debt/credit records, newest first, with the
	// outstanding totals of the listed kind(s).
	DebtsView struct {
		Kind        *core.DebtKind
		Records     []core.DebtCredit
		Outstanding core.Outstanding
	}
)

// LedgerService turns store snapshots into view models.
type LedgerService struct {
	store     Store
	cache     cache.Cache[DashboardView]
	publisher EventPublisher
	now       func() time.Time
}

// NewLedgerService wires the service. dashboards and publisher may be nil.
func NewLedgerService(store Store, dashboards cache.Cache[DashboardView], publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		cache:     dashboards,
		publisher: publisher,
		now:       time.Now,
	}
}

func dashboardKey(owner string) string { return "dashboard:" + owner }

// Dashboard fetches both record families concurrently and aggregates them.
func (s *LedgerService) Dashboard(ctx context.Context, owner string) (DashboardView, error) {
	if owner == "" {
		return DashboardView{}, core.ErrEmptyOwner
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, dashboardKey(owner)); ok {
			return v, nil
		}
	}

	var (
		txs   []core.Transaction
		debts []core.DebtCredit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.FetchTransactions(gctx, owner, nil)
		return err
	})
	g.Go(func() error {
		var err error
		debts, err = s.store.FetchDebtCredits(gctx, owner, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardView{}, err
	}

	recent, err := ledger.SelectRecent(txs, RecentCount)
	if err != nil {
		return DashboardView{}, err
	}
	view := DashboardView{
		Summary:           ledger.ComputeBalanceSummary(txs),
		Outstanding:       ledger.ComputeOutstanding(debts),
		Recent:            recent,
		ExpenseByCategory: ledger.SummarizeByCategory(txs, core.Expense),
		Skipped:           ledger.CountMalformed(txs) + ledger.CountMalformed(debts),
	}
	if view.Skipped > 0 {
		slog.WarnContext(ctx, "Records with unreadable dates", log.FieldOwner, owner, log.FieldSkipped, view.Skipped)
	}
	if s.cache != nil {
		s.cache.Set(ctx, dashboardKey(owner), view)
	}
	return view, nil
}

// TransactionsInRange lists transactions of typ (nil for both) within r.
func (s *LedgerService) TransactionsInRange(ctx context.Context, owner string, typ *core.TransactionType, r ledger.Range) (RangeView, error) {
	if owner == "" {
		return RangeView{}, core.ErrEmptyOwner
	}
	txs, err := s.store.FetchTransactions(ctx, owner, typ)
	if err != nil {
		return RangeView{}, err
	}
	filtered := ledger.FilterByRange(txs, r)
	view := RangeView{
		Type:    typ,
		Range:   r,
		Records: ledger.SortByDateDesc(filtered.Records),
		Total:   filtered.Total(),
		Skipped: filtered.Skipped,
	}
	if earliest, ok := ledger.EarliestDate(txs); ok {
		view.Earliest = &earliest
	}
	return view, nil
}

// RecentTransactions returns the n newest transactions.
func (s *LedgerService) RecentTransactions(ctx context.Context, owner string, n int) ([]core.Transaction, error) {
	if owner == "" {
		return nil, core.ErrEmptyOwner
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: n must not be negative", core.ErrInvalidArgument)
	}
	txs, err := s.store.FetchTransactions(ctx, owner, nil)
	if err != nil {
		return nil, err
	}
	return ledger.SelectRecent(txs, n)
}

// Calendar returns the days of year/month that have at least one record.
func (s *LedgerService) Calendar(ctx context.Context, owner string, typ *core.TransactionType, year, month int) (CalendarView, error) {
	if owner == "" {
		return CalendarView{}, core.ErrEmptyOwner
	}
	if month < 1 || month > 12 {
		return CalendarView{}, fmt.Errorf("%w: month %d", core.ErrInvalidArgument, month)
	}
	txs, err := s.store.FetchTransactions(ctx, owner, typ)
	if err != nil {
		return CalendarView{}, err
	}
	idx := ledger.NewDayIndex(txs)
	return CalendarView{
		Type:    typ,
		Year:    year,
		Month:   month,
		Days:    idx.InMonth(year, month),
		Skipped: idx.Skipped(),
	}, nil
}

// DebtCredits lists records of kind (nil for both).
func (s *LedgerService) DebtCredits(ctx context.Context, owner string, kind *core.DebtKind) (DebtsView, error) {
	if owner == "" {
		return DebtsView{}, core.ErrEmptyOwner
	}
	list, err := s.store.FetchDebtCredits(ctx, owner, kind)
	if err != nil {
		return DebtsView{}, err
	}
	return DebtsView{
		Kind:        kind,
		Records:     ledger.SortByDateDesc(list),
		Outstanding: ledger.ComputeOutstanding(list),
	}, nil
}

// Categories returns the owner's categories of typ matching query.
func (s *LedgerService) Categories(ctx context.Context, owner string, typ core.TransactionType, query string) ([]string, error) {
	if owner == "" {
		return nil, core.ErrEmptyOwner
	}
	if !typ.IsValid() {
		return nil, fmt.Errorf("%w: transaction type %q", core.ErrInvalidType, typ)
	}
	cats, err := s.store.ListCategories(ctx, owner, typ)
	if err != nil {
		return nil, err
	}
	return ledger.SuggestCategories(cats, query), nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.ensureCategory(ctx, created)
	s.changed(ctx, created.OwnerID, amqp.KindTransaction, created.ID, amqp.OpCreate)
	return created, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		return core.Transaction{}, fmt.Errorf("%w: missing id", core.ErrInvalidArgument)
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.ensureCategory(ctx, updated)
	s.changed(ctx, updated.OwnerID, amqp.KindTransaction, updated.ID, amqp.OpUpdate)
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, owner, id string) error {
	if owner == "" {
		return core.ErrEmptyOwner
	}
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		return err
	}
	s.changed(ctx, owner, amqp.KindTransaction, id, amqp.OpDelete)
	return nil
}

func (s *LedgerService) CreateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error) {
	if err := d.Validate(); err != nil {
		return core.DebtCredit{}, err
	}
	created, err := s.store.CreateDebtCredit(ctx, d)
	if err != nil {
		return core.DebtCredit{}, err
	}
	s.changed(ctx, created.OwnerID, amqp.KindDebtCredit, created.ID, amqp.OpCreate)
	return created, nil
}

func (s *LedgerService) UpdateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error) {
	if d.ID == "" {
		return core.DebtCredit{}, fmt.Errorf("%w: missing id", core.ErrInvalidArgument)
	}
	if err := d.Validate(); err != nil {
		return core.DebtCredit{}, err
	}
	updated, err := s.store.UpdateDebtCredit(ctx, d)
	if err != nil {
		return core.DebtCredit{}, err
	}
	s.changed(ctx, updated.OwnerID, amqp.KindDebtCredit, updated.ID, amqp.OpUpdate)
	return updated, nil
}

func (s *LedgerService) DeleteDebtCredit(ctx context.Context, owner, id string) error {
	if owner == "" {
		return core.ErrEmptyOwner
	}
	if err := s.store.DeleteDebtCredit(ctx, owner, id); err != nil {
		return err
	}
	s.changed(ctx, owner, amqp.KindDebtCredit, id, amqp.OpDelete)
	return nil
}

// MarkDebtCreditPaid settles a pending record. Settling twice returns
// core.ErrAlreadyPaid.
func (s *LedgerService) MarkDebtCreditPaid(ctx context.Context, owner, id string) (core.DebtCredit, error) {
	if owner == "" {
		return core.DebtCredit{}, core.ErrEmptyOwner
	}
	paid, err := s.store.MarkDebtCreditPaid(ctx, owner, id, s.now())
	if err != nil {
		return core.DebtCredit{}, err
	}
	s.changed(ctx, owner, amqp.KindDebtCredit, id, amqp.OpPay)
	return paid, nil
}

// ensureCategory adds an unseen category to the owner's set. A failure
// here does not undo the saved transaction.
func (s *LedgerService) ensureCategory(ctx context.Context, tx core.Transaction) {
	cats, err := s.store.ListCategories(ctx, tx.OwnerID, tx.Type)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list categories", log.FieldOwner, tx.OwnerID, log.FieldError, err)
		return
	}
	if ledger.HasCategory(cats, tx.Category) {
		return
	}
	if err := s.store.AddCategory(ctx, tx.OwnerID, tx.Type, tx.Category); err != nil {
		slog.WarnContext(ctx, "Failed to add category", log.FieldOwner, tx.OwnerID, "category", tx.Category, log.FieldError, err)
	}
}

// changed invalidates the owner's cached views and announces the change.
func (s *LedgerService) changed(ctx context.Context, owner string, kind amqp.RecordKind, id string, op amqp.Op) {
	if s.cache != nil {
		s.cache.Delete(ctx, dashboardKey(owner))
	}
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping record changed message")
		return
	}
	if err := s.publisher.PublishRecordChanged(ctx, amqp.NewRecordChangedMessage(owner, kind, id, op)); err != nil {
		fields := log.NewFields().
			WithComponent(log.ComponentAMQP).
			WithRecord(owner, string(kind), id).
			WithOperation(string(op)).
			WithError(err)
		slog.ErrorContext(ctx, "Failed to publish record changed message", fields.ToSlice()...)
	}
}
