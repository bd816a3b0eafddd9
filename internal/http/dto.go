package http

import (
	"time"

	"dompet/internal/core"
	"dompet/internal/services"
)

// Request bodies. Amounts are id-ID formatted text ("1.500.000", "12,5")
// and dates are YYYY-MM-DD.
type (
	transactionRequest struct {
		Type        string `json:"type" validate:"required"`
		Amount      string `json:"amount" validate:"required,max=32"`
		Description string `json:"description" validate:"required,max=200"`
		Category    string `json:"category" validate:"required,max=64"`
		Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	}

	debtRequest struct {
		Kind         string `json:"kind" validate:"required"`
		Amount       string `json:"amount" validate:"required,max=32"`
		Counterparty string `json:"counterparty" validate:"required,max=100"`
		Description  string `json:"description" validate:"required,max=200"`
		Date         string `json:"date" validate:"required,datetime=2006-01-02"`
		DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	}
)

func (req transactionRequest) toTransaction(owner string) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDay(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Date:        date,
		Type:        typ,
		OwnerID:     owner,
	}, nil
}

func (req debtRequest) toDebtCredit(owner string) (core.DebtCredit, error) {
	kind, err := core.ParseDebtKind(req.Kind)
	if err != nil {
		return core.DebtCredit{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.DebtCredit{}, err
	}
	date, err := core.ParseDay(req.Date)
	if err != nil {
		return core.DebtCredit{}, err
	}
	due, err := parseOptionalDay(req.DueDate)
	if err != nil {
		return core.DebtCredit{}, err
	}
	return core.NewDebtCredit(kind, owner, amount,
		sanitizeInput(req.Counterparty), sanitizeInput(req.Description), date, due), nil
}

// Response bodies.
type (
	moneyDTO struct {
		Sen       int64  `json:"sen"`
		Formatted string `json:"formatted"`
	}

	transactionDTO struct {
		ID          string   `json:"id"`
		Type        string   `json:"type"`
		Amount      moneyDTO `json:"amount"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Date        string   `json:"date,omitempty"`
	}

	debtDTO struct {
		ID           string   `json:"id"`
		Kind         string   `json:"kind"`
		Amount       moneyDTO `json:"amount"`
		Counterparty string   `json:"counterparty"`
		Description  string   `json:"description"`
		Date         string   `json:"date,omitempty"`
		DueDate      string   `json:"due_date,omitempty"`
		Status       string   `json:"status"`
		PaidAt       string   `json:"paid_at,omitempty"`
		Overdue      bool     `json:"overdue"`
	}

	summaryDTO struct {
		TotalIncome  moneyDTO `json:"total_income"`
		TotalExpense moneyDTO `json:"total_expense"`
		Balance      moneyDTO `json:"balance"`
	}

	outstandingDTO struct {
		TotalDebt   moneyDTO `json:"total_debt"`
		TotalCredit moneyDTO `json:"total_credit"`
	}

	categoryAmountDTO struct {
		Name   string   `json:"name"`
		Amount moneyDTO `json:"amount"`
		Count  int      `json:"count"`
	}

	dashboardDTO struct {
		Summary           summaryDTO          `json:"summary"`
		Outstanding       outstandingDTO      `json:"outstanding"`
		Recent            []transactionDTO    `json:"recent"`
		ExpenseByCategory []categoryAmountDTO `json:"expense_by_category"`
		Skipped           int                 `json:"skipped"`
	}

	rangeDTO struct {
		Type     string           `json:"type,omitempty"`
		From     string           `json:"from,omitempty"`
		To       string           `json:"to,omitempty"`
		Records  []transactionDTO `json:"records"`
		Total    moneyDTO         `json:"total"`
		Earliest string           `json:"earliest,omitempty"`
		Skipped  int              `json:"skipped"`
	}

	calendarDTO struct {
		Type    string `json:"type,omitempty"`
		Year    int    `json:"year"`
		Month   int    `json:"month"`
		Days    []int  `json:"days"`
		Skipped int    `json:"skipped"`
	}

	debtsDTO struct {
		Kind        string         `json:"kind,omitempty"`
		Records     []debtDTO      `json:"records"`
		Outstanding outstandingDTO `json:"outstanding"`
	}
)

func toMoney(m core.Money) moneyDTO {
	return moneyDTO{Sen: m.Sen, Formatted: core.FormatRupiah(m)}
}

func dayString(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.DayKey()
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      toMoney(t.Amount),
		Description: t.Description,
		Category:    t.Category,
		Date:        dayString(t.Date),
	}
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txs))
	for i, t := range txs {
		out[i] = toTransactionDTO(t)
	}
	return out
}

func toDebtDTO(d core.DebtCredit, today core.Date) debtDTO {
	return debtDTO{
		ID:           d.ID,
		Kind:         string(d.Kind),
		Amount:       toMoney(d.Amount),
		Counterparty: d.Counterparty,
		Description:  d.Description,
		Date:         dayString(d.Date),
		DueDate:      dayString(d.DueDate),
		Status:       string(d.Status()),
		PaidAt:       dayString(d.PaidAt()),
		Overdue:      d.IsPending() && d.HasDueDate() && services.StrictRule{}.IsOverdue(d.DueDate, today),
	}
}

func toOutstandingDTO(o core.Outstanding) outstandingDTO {
	return outstandingDTO{TotalDebt: toMoney(o.TotalDebt), TotalCredit: toMoney(o.TotalCredit)}
}

func toDashboardDTO(v services.DashboardView) dashboardDTO {
	cats := make([]categoryAmountDTO, len(v.ExpenseByCategory))
	for i, c := range v.ExpenseByCategory {
		cats[i] = categoryAmountDTO{Name: c.Name, Amount: toMoney(c.Amount), Count: c.Count}
	}
	return dashboardDTO{
		Summary: summaryDTO{
			TotalIncome:  toMoney(v.Summary.TotalIncome),
			TotalExpense: toMoney(v.Summary.TotalExpense),
			Balance:      toMoney(v.Summary.Balance),
		},
		Outstanding:       toOutstandingDTO(v.Outstanding),
		Recent:            toTransactionDTOs(v.Recent),
		ExpenseByCategory: cats,
		Skipped:           v.Skipped,
	}
}

func toRangeDTO(v services.RangeView) rangeDTO {
	out := rangeDTO{
		Records: toTransactionDTOs(v.Records),
		Total:   toMoney(v.Total),
		Skipped: v.Skipped,
	}
	if v.Type != nil {
		out.Type = string(*v.Type)
	}
	if v.Range.From != nil {
		out.From = v.Range.From.DayKey()
	}
	if v.Range.To != nil {
		out.To = v.Range.To.DayKey()
	}
	if v.Earliest != nil {
		out.Earliest = v.Earliest.DayKey()
	}
	return out
}

func toCalendarDTO(v services.CalendarView) calendarDTO {
	out := calendarDTO{Year: v.Year, Month: v.Month, Days: v.Days, Skipped: v.Skipped}
	if out.Days == nil {
		out.Days = []int{}
	}
	if v.Type != nil {
		out.Type = string(*v.Type)
	}
	return out
}

func toDebtsDTO(v services.DebtsView, now time.Time) debtsDTO {
	today := core.DateOf(now)
	records := make([]debtDTO, len(v.Records))
	for i, d := range v.Records {
		records[i] = toDebtDTO(d, today)
	}
	out := debtsDTO{Records: records, Outstanding: toOutstandingDTO(v.Outstanding)}
	if v.Kind != nil {
		out.Kind = string(*v.Kind)
	}
	return out
}
