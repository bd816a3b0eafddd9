package http

import (
	"net/http"
	"strings"

	"dompet/internal/core"
	"dompet/internal/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	view, err := s.ledger.Dashboard(ctx, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toDashboardDTO(view)).WarnSkipped(view.Skipped).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	q := r.URL.Query()
	typ, err := parseTypeParam(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, month, err := parseYearMonth(q, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.ledger.Calendar(ctx, owner, typ, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toCalendarDTO(view)).WarnSkipped(view.Skipped).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	q := r.URL.Query()
	typ, err := parseTypeParam(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if typ == nil {
		writeError(w, r, badRequest("type is required"))
		return
	}

	cats, err := s.ledger.Categories(ctx, owner, *typ, strings.TrimSpace(q.Get("q")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	q := r.URL.Query()
	typ, err := parseTypeParam(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := parseRange(q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.ledger.TransactionsInRange(ctx, owner, typ, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toRangeDTO(view)).WarnSkipped(view.Skipped).Write(w)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	n, err := parseIntParam(r.URL.Query(), "n", services.RecentCount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.ledger.RecentTransactions(ctx, owner, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toTransactionDTOs(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := req.toTransaction(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.ledger.CreateTransaction(ctx, tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+created.ID).
		Data(toTransactionDTO(created)).
		Notify(NotificationSuccess, "Transaksi tersimpan", true).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := req.toTransaction(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = r.PathValue("id")

	updated, err := s.ledger.UpdateTransaction(ctx, tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toTransactionDTO(updated)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	if err := s.ledger.DeleteTransaction(ctx, owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	kind, err := parseKindParam(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.ledger.DebtCredits(ctx, owner, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toDebtsDTO(view, s.now())).Write(w)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := req.toDebtCredit(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.ledger.CreateDebtCredit(ctx, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/debts/"+created.ID).
		Data(toDebtDTO(created, core.DateOf(s.now()))).
		Notify(NotificationSuccess, "Catatan tersimpan", true).
		Write(w)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := req.toDebtCredit(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d.ID = r.PathValue("id")

	updated, err := s.ledger.UpdateDebtCredit(ctx, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(toDebtDTO(updated, core.DateOf(s.now()))).Write(w)
}

func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	paid, err := s.ledger.MarkDebtCreditPaid(ctx, owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Data(toDebtDTO(paid, core.DateOf(s.now()))).
		Notify(NotificationSuccess, "Ditandai lunas", true).
		Write(w)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, owner := requestContext(r)
	defer cancel()

	if err := s.ledger.DeleteDebtCredit(ctx, owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
