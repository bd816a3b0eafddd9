package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/records"
)

// Store keeps every owner's records in process memory. Reads return
// copies, so callers always work on a snapshot.
type Store struct {
	mu    sync.RWMutex
	seeds map[core.TransactionType][]string
	txs   map[string][]core.Transaction
	debts map[string][]core.DebtCredit
	cats  map[string]map[core.TransactionType][]string
}

var _ records.Store = (*Store)(nil)

// New returns a store whose owners start with the given category seeds.
// A nil map uses records.DefaultCategories.
func New(seeds map[core.TransactionType][]string) *Store {
	if seeds == nil {
		seeds = records.DefaultCategories
	}
	clean := make(map[core.TransactionType][]string, len(seeds))
	for typ, names := range seeds {
		clean[typ] = ledger.DedupeCategories(names)
	}
	return &Store{
		seeds: clean,
		txs:   map[string][]core.Transaction{},
		debts: map[string][]core.DebtCredit{},
		cats:  map[string]map[core.TransactionType][]string{},
	}
}

// NewFromFiles reads category seeds from seed_income_categories.txt and
// seed_expense_categories.txt under base. Missing files fall back to the
// defaults.
func NewFromFiles(base string) *Store {
	seeds := map[core.TransactionType][]string{}
	for typ, name := range map[core.TransactionType]string{
		core.Income:  "seed_income_categories.txt",
		core.Expense: "seed_expense_categories.txt",
	} {
		lines := readLines(filepath.Join(base, name))
		if len(lines) == 0 {
			lines = records.DefaultCategories[typ]
		}
		seeds[typ] = lines
	}
	return New(seeds)
}

func (s *Store) Close() error { return nil }

func (s *Store) FetchTransactions(ctx context.Context, owner string, typ *core.TransactionType) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewDataAccessError("fetch transactions", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.txs[owner]))
	for _, tx := range s.txs[owner] {
		if typ == nil || tx.Type == *typ {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, core.NewDataAccessError("create transaction", err)
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	tx.Date = tx.Date.Canonical()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.OwnerID] = append(s.txs[tx.OwnerID], tx)
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, core.NewDataAccessError("update transaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.txs[tx.OwnerID]
	i := slices.IndexFunc(list, func(t core.Transaction) bool { return t.ID == tx.ID })
	if i < 0 {
		return core.Transaction{}, core.NewDataAccessError("update transaction", core.ErrNotFound)
	}
	tx.Type = list[i].Type
	tx.Date = tx.Date.Canonical()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	list[i] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return core.NewDataAccessError("delete transaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.txs[owner]
	i := slices.IndexFunc(list, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return core.NewDataAccessError("delete transaction", core.ErrNotFound)
	}
	s.txs[owner] = slices.Delete(list, i, i+1)
	return nil
}

func (s *Store) FetchDebtCredits(ctx context.Context, owner string, kind *core.DebtKind) ([]core.DebtCredit, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewDataAccessError("fetch debt credits", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.DebtCredit, 0, len(s.debts[owner]))
	for _, d := range s.debts[owner] {
		if kind == nil || d.Kind == *kind {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) CreateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error) {
	if err := ctx.Err(); err != nil {
		return core.DebtCredit{}, core.NewDataAccessError("create debt credit", err)
	}
	if err := d.Validate(); err != nil {
		return core.DebtCredit{}, err
	}
	// New records always start pending.
	d = core.NewDebtCredit(d.Kind, d.OwnerID, d.Amount, d.Counterparty, d.Description, d.Date.Canonical(), d.DueDate.Canonical())
	d.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[d.OwnerID] = append(s.debts[d.OwnerID], d)
	return d, nil
}

func (s *Store) UpdateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error) {
	if err := ctx.Err(); err != nil {
		return core.DebtCredit{}, core.NewDataAccessError("update debt credit", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.debts[d.OwnerID]
	i := slices.IndexFunc(list, func(r core.DebtCredit) bool { return r.ID == d.ID })
	if i < 0 {
		return core.DebtCredit{}, core.NewDataAccessError("update debt credit", core.ErrNotFound)
	}
	cur := list[i]
	cur.Amount = d.Amount
	cur.Description = d.Description
	cur.Counterparty = d.Counterparty
	cur.DueDate = d.DueDate.Canonical()
	if err := cur.Validate(); err != nil {
		return core.DebtCredit{}, err
	}
	list[i] = cur
	return cur, nil
}

func (s *Store) DeleteDebtCredit(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return core.NewDataAccessError("delete debt credit", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.debts[owner]
	i := slices.IndexFunc(list, func(r core.DebtCredit) bool { return r.ID == id })
	if i < 0 {
		return core.NewDataAccessError("delete debt credit", core.ErrNotFound)
	}
	s.debts[owner] = slices.Delete(list, i, i+1)
	return nil
}

func (s *Store) MarkDebtCreditPaid(ctx context.Context, owner, id string, at time.Time) (core.DebtCredit, error) {
	if err := ctx.Err(); err != nil {
		return core.DebtCredit{}, core.NewDataAccessError("mark debt credit paid", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.debts[owner]
	i := slices.IndexFunc(list, func(r core.DebtCredit) bool { return r.ID == id })
	if i < 0 {
		return core.DebtCredit{}, core.NewDataAccessError("mark debt credit paid", core.ErrNotFound)
	}
	paid, err := list[i].MarkPaid(at)
	if err != nil {
		return list[i], err
	}
	list[i] = paid
	return paid, nil
}

func (s *Store) ListOwnersWithPendingDebts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewDataAccessError("list owners", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owners []string
	for owner, list := range s.debts {
		if slices.ContainsFunc(list, core.DebtCredit.IsPending) {
			owners = append(owners, owner)
		}
	}
	slices.Sort(owners)
	return owners, nil
}

func (s *Store) ListCategories(ctx context.Context, owner string, typ core.TransactionType) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewDataAccessError("list categories", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byType, ok := s.cats[owner]; ok {
		if names, ok := byType[typ]; ok {
			return slices.Clone(names), nil
		}
	}
	return slices.Clone(s.seeds[typ]), nil
}

func (s *Store) AddCategory(ctx context.Context, owner string, typ core.TransactionType, name string) error {
	if err := ctx.Err(); err != nil {
		return core.NewDataAccessError("add category", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	if !typ.IsValid() {
		return core.ErrInvalidType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byType, ok := s.cats[owner]
	if !ok {
		byType = map[core.TransactionType][]string{}
		s.cats[owner] = byType
	}
	names, ok := byType[typ]
	if !ok {
		names = slices.Clone(s.seeds[typ])
	}
	if !ledger.HasCategory(names, name) {
		names = append(names, name)
	}
	byType[typ] = names
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return ledger.DedupeCategories(out)
}
