package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/security"
	"dompet/internal/middleware/trace"
	"dompet/internal/services"
)

const requestTimeout = 10 * time.Second

// Ledger is the service surface the handlers call.
type Ledger interface {
	Dashboard(ctx context.Context, owner string) (services.DashboardView, error)
	TransactionsInRange(ctx context.Context, owner string, typ *core.TransactionType, r ledger.Range) (services.RangeView, error)
	RecentTransactions(ctx context.Context, owner string, n int) ([]core.Transaction, error)
	Calendar(ctx context.Context, owner string, typ *core.TransactionType, year, month int) (services.CalendarView, error)
	Categories(ctx context.Context, owner string, typ core.TransactionType, query string) ([]string, error)
	DebtCredits(ctx context.Context, owner string, kind *core.DebtKind) (services.DebtsView, error)

	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, owner, id string) error
	CreateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error)
	UpdateDebtCredit(ctx context.Context, d core.DebtCredit) (core.DebtCredit, error)
	DeleteDebtCredit(ctx context.Context, owner, id string) error
	MarkDebtCreditPaid(ctx context.Context, owner, id string) (core.DebtCredit, error)
}

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Logger    *log.Logger
	Auth      *Authenticator
	RateLimit ratelimit.Config
	// Ready reports whether dependencies can serve traffic.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger  Ledger
	auth    *Authenticator
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	ready   func(ctx context.Context) error
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, l Ledger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Auth == nil {
		opts.Auth = NewAuthenticator("")
	}

	s := &Server{
		ledger:  l,
		auth:    opts.Auth,
		limiter: ratelimit.NewLimiter(opts.RateLimit),
		tracer:  trace.NewMiddleware(opts.Logger, extractClientIP),
		ready:   opts.Ready,
		now:     time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.auth.Middleware(h))
	}
	api("GET /api/dashboard", s.handleDashboard)
	api("GET /api/calendar", s.handleCalendar)
	api("GET /api/categories", s.handleCategories)

	api("GET /api/transactions", s.handleListTransactions)
	api("GET /api/transactions/recent", s.handleRecentTransactions)
	api("POST /api/transactions", s.handleCreateTransaction)
	api("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api("GET /api/debts", s.handleListDebts)
	api("POST /api/debts", s.handleCreateDebt)
	api("PUT /api/debts/{id}", s.handleUpdateDebt)
	api("POST /api/debts/{id}/pay", s.handlePayDebt)
	api("DELETE /api/debts/{id}", s.handleDeleteDebt)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, extractClientIP(r),
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})

	var handler http.Handler = mux
	handler = limited(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = log.Middleware(opts.Logger.WithComponent(log.ComponentHTTP))(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

// requestContext bounds handler work and returns the authenticated owner.
func requestContext(r *http.Request) (context.Context, context.CancelFunc, string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	return ctx, cancel, OwnerFrom(r.Context())
}
