// Package handler wires the admin REST API: chi router, JWT middleware and
// the per-area handlers.
package handler

import (
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Ledger   *service.LedgerService
	Loans    *service.LoanService
	Members  *service.MemberService
	Fund     *service.FundService
	Requests *service.RequestService
	Receipts *service.ReceiptService
	Auth     *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware. Every
// /v1 route except login is behind JWT auth.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/healthz", healthzHandler(svcs.Fund, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", loginHandler(svcs.Auth, logger))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Members
			r.Get("/members", listMembersHandler(svcs.Members, logger))
			r.Post("/members", createMemberHandler(svcs.Members, logger))
			r.Get("/members/{memberId}", getMemberHandler(svcs.Members, logger))
			r.Put("/members/{memberId}", updateMemberHandler(svcs.Members, logger))
			r.Post("/members/{memberId}/deactivate", deactivateMemberHandler(svcs.Members, logger))
			r.Get("/members/{memberId}/payments", memberPaymentsHandler(svcs.Ledger, logger))
			r.Post("/members/{memberId}/withdrawals", withdrawHandler(svcs.Ledger, logger))

			// Payments
			r.Get("/payments", listPaymentsHandler(svcs.Ledger, logger))
			r.Post("/payments", postPaymentHandler(svcs.Ledger, logger))
			r.Post("/payments/preview", previewPaymentHandler(svcs.Ledger, logger))

			// Loans
			r.Get("/loans", listLoansHandler(svcs.Loans, logger))
			r.Post("/loans", disburseLoanHandler(svcs.Loans, logger))
			r.Post("/loans/{loanId}/settle", settleLoanHandler(svcs.Loans, logger))
			r.Get("/loans/{loanId}/schedule", loanScheduleHandler(svcs.Loans, logger))

			// Loan requests (Telegram bot)
			r.Get("/loan-requests", listRequestsHandler(svcs.Requests, logger))
			r.Post("/loan-requests/{requestId}/approve", approveRequestHandler(svcs.Requests, logger))
			r.Post("/loan-requests/{requestId}/reject", rejectRequestHandler(svcs.Requests, logger))

			// Receipt submissions (Telegram bot)
			r.Get("/receipts", listReceiptsHandler(svcs.Receipts, logger))
			r.Post("/receipts/{receiptId}/approve", approveReceiptHandler(svcs.Receipts, logger))
			r.Post("/receipts/{receiptId}/reject", rejectReceiptHandler(svcs.Receipts, logger))

			// Fund
			r.Get("/fund/summary", fundSummaryHandler(svcs.Fund, logger))
			r.Get("/fund/report", fundReportHandler(svcs.Fund, logger))
			r.Get("/fund/log", fundLogHandler(svcs.Fund, logger))
			r.Get("/fund/metrics", fundMetricsHandler(svcs.Fund, logger))

			// Telegram
			r.Get("/telegram/check", telegramCheckHandler(svcs.Requests, logger))
		})
	})

	return r
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func healthzHandler(fundSvc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if _, err := fundSvc.Report(r.Context()); err != nil {
			logger.Warn("healthz: data store check failed", zap.Error(err))
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	}
}
