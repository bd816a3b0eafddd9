package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dompet/internal/amqp"
	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/records/memory"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.RecordChangedMessage
	err  error
}

func (p *recordingPublisher) PublishRecordChanged(_ context.Context, msg *amqp.RecordChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingPublisher) ops() []amqp.Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Op, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Op
	}
	return out
}

// failingStore reports every read as a data access failure.
type failingStore struct {
	*memory.Store
}

var errBackend = errors.New("backend unavailable")

func (failingStore) FetchTransactions(context.Context, string, *core.TransactionType) ([]core.Transaction, error) {
	return nil, core.NewDataAccessError("fetch transactions", errBackend)
}

func (failingStore) FetchDebtCredits(context.Context, string, *core.DebtKind) ([]core.DebtCredit, error) {
	return nil, core.NewDataAccessError("fetch debt credits", errBackend)
}

func newService(t *testing.T) (*LedgerService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(nil), cache.NewLRUCache[DashboardView](10, time.Minute), pub)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC) }
	return svc, pub
}

func seed(t *testing.T, svc *LedgerService) {
	t.Helper()
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{Amount: core.Rupiah(100), Description: "gaji", Category: "Gaji", Date: core.NewDate(2024, 1, 1), Type: core.Income, OwnerID: "alice"},
		{Amount: core.Rupiah(40), Description: "makan", Category: "Makan", Date: core.NewDate(2024, 1, 2), Type: core.Expense, OwnerID: "alice"},
		{Amount: core.Rupiah(60), Description: "bonus", Category: "Bonus", Date: core.NewDate(2024, 1, 5), Type: core.Income, OwnerID: "alice"},
	} {
		_, err := svc.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seed(t, svc)

	_, err := svc.CreateDebtCredit(ctx, core.NewDebtCredit(core.Debt, "alice", core.Rupiah(500), "Budi", "pinjam", core.NewDate(2024, 1, 3), core.Date{}))
	require.NoError(t, err)

	view, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, core.Rupiah(160), view.Summary.TotalIncome)
	assert.Equal(t, core.Rupiah(40), view.Summary.TotalExpense)
	assert.Equal(t, core.Rupiah(120), view.Summary.Balance)
	assert.Equal(t, core.Rupiah(500), view.Outstanding.TotalDebt)
	require.Len(t, view.Recent, 3)
	assert.Equal(t, "bonus", view.Recent[0].Description)
	require.Len(t, view.ExpenseByCategory, 1)
	assert.Equal(t, "Makan", view.ExpenseByCategory[0].Name)

	empty, err := svc.Dashboard(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, core.BalanceSummary{}, empty.Summary)
	assert.Empty(t, empty.Recent)

	_, err = svc.Dashboard(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyOwner)
}

func TestDashboardCacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seed(t, svc)

	first, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, core.Transaction{
		Amount: core.Rupiah(10), Description: "kopi", Category: "Makan",
		Date: core.NewDate(2024, 1, 6), Type: core.Expense, OwnerID: "alice",
	})
	require.NoError(t, err)

	second, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.Summary.TotalExpense.Add(core.Rupiah(10)), second.Summary.TotalExpense)
	assert.Equal(t, "kopi", second.Recent[0].Description)
}

func TestMarkPaidLowersOutstanding(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t)

	d, err := svc.CreateDebtCredit(ctx, core.NewDebtCredit(core.Debt, "alice", core.Rupiah(500), "Budi", "pinjam", core.NewDate(2024, 1, 1), core.Date{}))
	require.NoError(t, err)
	_, err = svc.CreateDebtCredit(ctx, core.NewDebtCredit(core.Credit, "alice", core.Rupiah(75), "Sari", "titip", core.NewDate(2024, 1, 2), core.Date{}))
	require.NoError(t, err)

	before, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)

	paid, err := svc.MarkDebtCreditPaid(ctx, "alice", d.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", paid.PaidAt().DayKey())

	after, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.Outstanding.TotalDebt.Sub(core.Rupiah(500)), after.Outstanding.TotalDebt)
	assert.Equal(t, before.Outstanding.TotalCredit, after.Outstanding.TotalCredit)

	_, err = svc.MarkDebtCreditPaid(ctx, "alice", d.ID)
	assert.ErrorIs(t, err, core.ErrAlreadyPaid)

	again, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, after.Outstanding, again.Outstanding)

	assert.Equal(t, []amqp.Op{amqp.OpCreate, amqp.OpCreate, amqp.OpPay}, pub.ops())
}

func TestTransactionsInRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seed(t, svc)

	day := core.NewDate(2024, 1, 2)
	view, err := svc.TransactionsInRange(ctx, "alice", nil, ledger.Range{From: &day, To: &day})
	require.NoError(t, err)
	require.Len(t, view.Records, 1)
	assert.Equal(t, core.Rupiah(40), view.Total)
	require.NotNil(t, view.Earliest)
	assert.Equal(t, "2024-01-01", view.Earliest.DayKey())

	income := core.Income
	all, err := svc.TransactionsInRange(ctx, "alice", &income, ledger.Range{})
	require.NoError(t, err)
	require.Len(t, all.Records, 2)
	assert.Equal(t, "bonus", all.Records[0].Description, "newest first")
	assert.Equal(t, core.Rupiah(160), all.Total)
}

func TestCalendar(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seed(t, svc)

	view, err := svc.Calendar(ctx, "alice", nil, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, view.Days)

	_, err = svc.Calendar(ctx, "alice", nil, 2024, 13)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCategoriesAutoAdded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CreateTransaction(ctx, core.Transaction{
		Amount: core.Rupiah(5), Description: "parkir", Category: "Parkir",
		Date: core.NewDate(2024, 1, 1), Type: core.Expense, OwnerID: "alice",
	})
	require.NoError(t, err)

	cats, err := svc.Categories(ctx, "alice", core.Expense, "par")
	require.NoError(t, err)
	assert.Equal(t, []string{"Parkir"}, cats)

	_, err = svc.Categories(ctx, "alice", core.TransactionType("x"), "")
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestDataAccessErrorPropagates(t *testing.T) {
	svc := NewLedgerService(failingStore{memory.New(nil)}, nil, nil)

	_, err := svc.Dashboard(context.Background(), "alice")
	var dae *core.DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.ErrorIs(t, err, errBackend)

	_, err = svc.TransactionsInRange(context.Background(), "alice", nil, ledger.Range{})
	assert.True(t, core.IsDataAccess(err))
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, pub := newService(t)
	pub.err = errors.New("broker down")

	created, err := svc.CreateTransaction(context.Background(), core.Transaction{
		Amount: core.Rupiah(5), Description: "x", Category: "Makan",
		Date: core.NewDate(2024, 1, 1), Type: core.Expense, OwnerID: "alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestValidationBeforeStore(t *testing.T) {
	svc, pub := newService(t)
	_, err := svc.CreateTransaction(context.Background(), core.Transaction{OwnerID: "alice", Type: core.Income})
	assert.True(t, core.IsValidation(err))
	assert.Empty(t, pub.ops())

	_, err = svc.UpdateTransaction(context.Background(), core.Transaction{OwnerID: "alice"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = svc.RecentTransactions(context.Background(), "alice", -1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
