package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var fundTracer = otel.Tracer("service/fund")

// FundService produces the fund-level roll-ups and the fund log view.
type FundService struct {
	store   port.FundStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFundService creates the fund service.
func NewFundService(store port.FundStore, metrics *observability.Metrics, logger *zap.Logger) *FundService {
	return &FundService{store: store, metrics: metrics, logger: logger}
}

// Summary computes the headline money view: total contributions, total
// repayments, principal still out on open loans, and the approximate balance
// derived from them. Payments and loans are fetched concurrently.
func (s *FundService) Summary(ctx context.Context) (*domain.FundSummary, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.Summary")
	defer span.End()

	var (
		payments []domain.Payment
		loans    []domain.Loan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.store.ListPayments(gctx)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		loans, err = s.store.ListLoans(gctx)
		if err != nil {
			return fmt.Errorf("list loans: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.FundSummary{}
	for _, p := range payments {
		switch p.Type {
		case domain.PaymentContribution:
			summary.TotalContributions += p.Amount
		case domain.PaymentRepayment:
			summary.TotalRepayments += p.Amount
		}
	}
	for i := range loans {
		if loans[i].IsActive() {
			summary.ActiveLoanPrincipal += loans[i].Amount
		}
	}
	summary.Balance = summary.TotalContributions + summary.TotalRepayments - summary.ActiveLoanPrincipal

	return summary, nil
}

// Report rolls the member snapshots up into total deposits, total
// outstanding balances and the lending ceiling.
func (s *FundService) Report(ctx context.Context) (*domain.FundReport, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.Report")
	defer span.End()

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	report := &domain.FundReport{MemberCount: len(members)}
	for i := range members {
		report.TotalDeposits += members[i].Deposit
		report.TotalLoanBalances += members[i].LoanBalance
	}
	report.LendingCeiling = domain.LendingCeiling(members)

	return report, nil
}

// Log returns the fund's own account movements, newest first.
func (s *FundService) Log(ctx context.Context) ([]domain.FundLogEntry, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.Log")
	defer span.End()

	entries, err := s.store.ListFundLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fund log: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})
	return entries, nil
}

// Metrics exposes the in-process counters as a dashboard snapshot.
func (s *FundService) Metrics(ctx context.Context) *domain.LedgerMetrics {
	_, span := fundTracer.Start(ctx, "FundService.Metrics")
	defer span.End()

	return s.metrics.GetLedgerSnapshot()
}
