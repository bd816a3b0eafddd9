package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dompet/internal/core"
)

func tx(id string, rupiah int64, typ core.TransactionType, date core.Date) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      core.Rupiah(rupiah),
		Description: id,
		Category:    "Umum",
		Date:        date,
		Type:        typ,
		OwnerID:     "owner-1",
	}
}

func scenario() []core.Transaction {
	return []core.Transaction{
		tx("t1", 100, core.Income, core.NewDate(2024, 1, 1)),
		tx("t2", 40, core.Expense, core.NewDate(2024, 1, 2)),
		tx("t3", 60, core.Income, core.NewDate(2024, 1, 5)),
	}
}

func pending(id string, rupiah int64, kind core.DebtKind) core.DebtCredit {
	d := core.NewDebtCredit(kind, "owner-1", core.Rupiah(rupiah), "Budi", id, core.NewDate(2024, 1, 1), core.Date{})
	d.ID = id
	return d
}

func TestComputeBalanceSummary(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		got := ComputeBalanceSummary(scenario())
		assert.Equal(t, core.Rupiah(160), got.TotalIncome)
		assert.Equal(t, core.Rupiah(40), got.TotalExpense)
		assert.Equal(t, core.Rupiah(120), got.Balance)
	})

	t.Run("empty input is all zeros", func(t *testing.T) {
		assert.Equal(t, core.BalanceSummary{}, ComputeBalanceSummary(nil))
		assert.Equal(t, core.BalanceSummary{}, ComputeBalanceSummary([]core.Transaction{}))
	})

	t.Run("unknown type is excluded", func(t *testing.T) {
		txs := append(scenario(), tx("t4", 999, core.TransactionType("transfer"), core.NewDate(2024, 1, 3)))
		got := ComputeBalanceSummary(txs)
		assert.Equal(t, core.Rupiah(160), got.TotalIncome)
		assert.Equal(t, core.Rupiah(40), got.TotalExpense)
	})

	t.Run("balance identity holds", func(t *testing.T) {
		inputs := [][]core.Transaction{
			scenario(),
			{tx("a", 5, core.Expense, core.NewDate(2024, 3, 1))},
			{
				{Amount: core.Money{Sen: 1}, Type: core.Income},
				{Amount: core.Money{Sen: 2}, Type: core.Income},
				{Amount: core.Money{Sen: 7}, Type: core.Expense},
			},
		}
		for _, in := range inputs {
			s := ComputeBalanceSummary(in)
			assert.Equal(t, s.TotalIncome.Sen-s.TotalExpense.Sen, s.Balance.Sen)
		}
	})

	t.Run("zero and negative amounts do not panic", func(t *testing.T) {
		got := ComputeBalanceSummary([]core.Transaction{
			{Amount: core.Money{Sen: 0}, Type: core.Income},
			{Amount: core.Money{Sen: -300}, Type: core.Expense},
		})
		assert.Equal(t, int64(300), got.Balance.Sen)
	})
}

func TestComputeOutstanding(t *testing.T) {
	records := []core.DebtCredit{
		pending("d1", 500, core.Debt),
		pending("d2", 200, core.Debt),
		pending("c1", 75, core.Credit),
	}

	before := ComputeOutstanding(records)
	assert.Equal(t, core.Rupiah(700), before.TotalDebt)
	assert.Equal(t, core.Rupiah(75), before.TotalCredit)

	paid, err := records[0].MarkPaid(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	records[0] = paid

	after := ComputeOutstanding(records)
	assert.Equal(t, before.TotalDebt.Sub(core.Rupiah(500)), after.TotalDebt, "debt drops by exactly the paid amount")
	assert.Equal(t, before.TotalCredit, after.TotalCredit, "credit is untouched")

	for i := 0; i < 3; i++ {
		assert.Equal(t, after, ComputeOutstanding(records), "recomputation is stable")
	}

	t.Run("marking a credit paid lowers only credit", func(t *testing.T) {
		settled, err := records[2].MarkPaid(time.Now())
		require.NoError(t, err)
		rs := []core.DebtCredit{records[0], records[1], settled}
		got := ComputeOutstanding(rs)
		assert.Equal(t, core.Money{}, got.TotalCredit)
		assert.Equal(t, core.Rupiah(200), got.TotalDebt)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, core.Outstanding{}, ComputeOutstanding(nil))
	})
}

func TestSelectRecent(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		got, err := SelectRecent(scenario(), 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "t3", got[0].ID)
		assert.Equal(t, "t2", got[1].ID)
	})

	t.Run("negative n", func(t *testing.T) {
		_, err := SelectRecent(scenario(), -1)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("n larger than input", func(t *testing.T) {
		got, err := SelectRecent(scenario(), 10)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("zero n", func(t *testing.T) {
		got, err := SelectRecent(scenario(), 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ties keep input order across calls", func(t *testing.T) {
		day := core.NewDate(2024, 5, 1)
		in := []core.Transaction{
			tx("a", 1, core.Income, day),
			tx("b", 2, core.Income, day),
			tx("c", 3, core.Income, day),
			tx("z", 4, core.Income, core.Date{}),
		}
		for i := 0; i < 5; i++ {
			got, err := SelectRecent(in, 4)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c", "z"}, ids(got))
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		in := scenario()
		_, _ = SelectRecent(in, 3)
		assert.Equal(t, []string{"t1", "t2", "t3"}, ids(in))
	})
}

func TestSummarizeByCategory(t *testing.T) {
	in := []core.Transaction{
		{Category: "Makan", Amount: core.Rupiah(30), Type: core.Expense},
		{Category: "Transport", Amount: core.Rupiah(50), Type: core.Expense},
		{Category: "Makan", Amount: core.Rupiah(25), Type: core.Expense},
		{Category: "Gaji", Amount: core.Rupiah(1000), Type: core.Income},
		{Category: "Hiburan", Amount: core.Rupiah(55), Type: core.Expense},
	}
	got := SummarizeByCategory(in, core.Expense)
	require.Len(t, got, 3)
	assert.Equal(t, core.CategoryAmount{Name: "Hiburan", Amount: core.Rupiah(55), Count: 1}, got[0])
	assert.Equal(t, core.CategoryAmount{Name: "Makan", Amount: core.Rupiah(55), Count: 2}, got[1])
	assert.Equal(t, "Transport", got[2].Name)
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}
