// Package service — orchestration over the fund store. The LedgerService owns
// payment classification, posting and deposit withdrawals.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/port"
	"github.com/Mohamad548/bilalhabashi/internal/shamsi"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService posts classified payments and withdrawals against member
// snapshots.
type LedgerService struct {
	store   port.FundStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLedgerService creates the ledger service.
func NewLedgerService(store port.FundStore, metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{store: store, metrics: metrics, logger: logger}
}

// PaymentRequest is an operator payment entry.
type PaymentRequest struct {
	MemberID string               `json:"memberId"`
	Amount   int64                `json:"amount"`
	Date     string               `json:"date"`
	Intent   domain.PaymentIntent `json:"type"`
	Note     string               `json:"note,omitempty"`
	// Confirm approves a split the operator has already previewed.
	Confirm bool `json:"confirm,omitempty"`

	// receiptImagePath tags records posted from a receipt approval.
	receiptImagePath string
}

// PaymentResult is the outcome of a posted payment.
type PaymentResult struct {
	Member   *domain.Member   `json:"member"`
	Payments []domain.Payment `json:"payments"`
	Warning  string           `json:"warning,omitempty"`
}

// classify loads the member's loan state and runs the classifier on it.
func (s *LedgerService) classify(ctx context.Context, req *PaymentRequest) (*domain.Member, *domain.Decision, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return nil, nil, &domain.ErrValidation{Field: "memberId", Message: "عضو را انتخاب کنید."}
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, nil, &domain.ErrValidation{Field: "date", Message: "تاریخ را انتخاب کنید."}
	}

	member, err := s.store.GetMember(ctx, req.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("get member: %w", err)
	}

	loans, err := s.store.ListMemberLoans(ctx, req.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("list member loans: %w", err)
	}

	var installment int64
	active := domain.ActiveLoan(loans, req.MemberID)
	if active != nil {
		installment = active.Installment()
	}

	decision, err := domain.Classify(domain.ClassifyInput{
		Intent:        req.Intent,
		Amount:        req.Amount,
		Note:          strings.TrimSpace(req.Note),
		HasActiveLoan: active != nil,
		Installment:   installment,
		LoanBalance:   member.LoanBalance,
	})
	if err != nil {
		s.metrics.IncrClassification("rejected")
		return nil, nil, err
	}

	return member, decision, nil
}

// PreviewPayment classifies an entry without writing anything, so the UI can
// show the split and the confirmation dialog.
func (s *LedgerService) PreviewPayment(ctx context.Context, req *PaymentRequest) (*domain.Decision, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PreviewPayment")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", req.MemberID))

	_, decision, err := s.classify(ctx, req)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// PostPayment classifies and posts an entry. Splits that require operator
// confirmation must arrive with Confirm set; otherwise the computed split is
// returned inside ErrConfirmationRequired and nothing is written.
//
// Payment records are written before the member snapshot, mirroring the
// admin UI's write order. A failure after the first record surfaces as
// ErrInconsistentState for manual reconciliation.
func (s *LedgerService) PostPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PostPayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("member.id", req.MemberID),
		attribute.String("payment.intent", string(req.Intent)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("post_payment", time.Since(start))
	}()

	member, decision, err := s.classify(ctx, req)
	if err != nil {
		return nil, err
	}

	if decision.RequiresConfirmation && !req.Confirm {
		s.metrics.IncrClassification("confirmation_required")
		return nil, &domain.ErrConfirmationRequired{Decision: decision}
	}
	s.metrics.IncrClassification("accepted")

	date := shamsi.NormalizeDate(req.Date)
	updated, payments := domain.ApplyDecision(*member, decision, date)

	written := 0
	for i := range payments {
		payments[i].ID = uuid.NewString()
		payments[i].CreatedAt = time.Now().UTC().Format(time.RFC3339)
		payments[i].ReceiptImagePath = req.receiptImagePath

		if _, err := s.store.CreatePayment(ctx, &payments[i]); err != nil {
			if written > 0 {
				s.logger.Error("payment posting failed after partial write",
					zap.String("member_id", req.MemberID),
					zap.Int("written", written),
					zap.Error(err),
				)
				return nil, &domain.ErrInconsistentState{Operation: "post payment", Err: err}
			}
			return nil, fmt.Errorf("create payment: %w", err)
		}
		written++
		s.metrics.IncrPaymentPosted(string(payments[i].Type))
	}

	saved, err := s.store.UpdateMember(ctx, &updated, member.Version)
	if err != nil {
		var stale *domain.ErrStaleState
		if errors.As(err, &stale) {
			// Payment rows exist but the snapshot write lost the race.
			return nil, &domain.ErrInconsistentState{Operation: "post payment", Err: err}
		}
		return nil, &domain.ErrInconsistentState{Operation: "post payment", Err: err}
	}

	s.logger.Info("payment posted",
		zap.String("member_id", req.MemberID),
		zap.String("intent", string(req.Intent)),
		zap.Int64("amount", req.Amount),
		zap.Int("records", len(payments)),
	)

	return &PaymentResult{
		Member:   saved,
		Payments: payments,
		Warning:  decision.Warning,
	}, nil
}

// WithdrawalRequest is an operator withdrawal entry.
type WithdrawalRequest struct {
	Mode   domain.WithdrawalMode `json:"mode"`
	Amount int64                 `json:"amount"`
	Card   string                `json:"card,omitempty"`
}

// Withdraw applies a deposit withdrawal for a member.
func (s *LedgerService) Withdraw(ctx context.Context, memberID string, req *WithdrawalRequest) (*PaymentResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Withdraw")
	defer span.End()
	span.SetAttributes(
		attribute.String("member.id", memberID),
		attribute.String("withdrawal.mode", string(req.Mode)),
	)

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	res, err := domain.ApplyWithdrawal(*member, req.Mode, req.Amount, strings.TrimSpace(req.Card), shamsi.Today())
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{}

	if res.Payment != nil {
		res.Payment.ID = uuid.NewString()
		res.Payment.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		if _, err := s.store.CreatePayment(ctx, res.Payment); err != nil {
			return nil, fmt.Errorf("create payment: %w", err)
		}
		result.Payments = []domain.Payment{*res.Payment}
		s.metrics.IncrPaymentPosted(string(res.Payment.Type))
	}

	if res.LogEntry != nil {
		res.LogEntry.ID = uuid.NewString()
		res.LogEntry.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		if _, err := s.store.AppendFundLog(ctx, res.LogEntry); err != nil {
			return nil, fmt.Errorf("append fund log: %w", err)
		}
	}

	saved, err := s.store.UpdateMember(ctx, &res.Member, member.Version)
	if err != nil {
		return nil, &domain.ErrInconsistentState{Operation: "withdraw", Err: err}
	}
	result.Member = saved

	s.metrics.IncrWithdrawal(string(req.Mode))
	s.logger.Info("withdrawal posted",
		zap.String("member_id", memberID),
		zap.String("mode", string(req.Mode)),
		zap.Int64("amount", req.Amount),
	)

	return result, nil
}

// ListPayments returns all payment records, newest first.
func (s *LedgerService) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListPayments")
	defer span.End()

	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt > payments[j].CreatedAt
	})
	return payments, nil
}

// MemberPaymentRow is one display row of a member's payment history. A
// same-date repayment+contribution pair (a posted split) is shown as one
// combined deposit row.
type MemberPaymentRow struct {
	Kind               string          `json:"kind"` // single | combined
	Date               string          `json:"date"`
	TotalAmount        int64           `json:"totalAmount"`
	RepaymentAmount    int64           `json:"repaymentAmount,omitempty"`
	ContributionAmount int64           `json:"contributionAmount,omitempty"`
	Note               string          `json:"note,omitempty"`
	ReceiptImagePath   string          `json:"receiptImagePath,omitempty"`
	ExcessContribution bool            `json:"excessContribution,omitempty"`
	Payment            *domain.Payment `json:"payment,omitempty"`
}

// ListMemberPayments returns a member's payment history as display rows,
// newest date first.
func (s *LedgerService) ListMemberPayments(ctx context.Context, memberID string) ([]MemberPaymentRow, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListMemberPayments")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID))

	payments, err := s.store.ListMemberPayments(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list member payments: %w", err)
	}

	return groupMemberPayments(payments), nil
}

// groupMemberPayments reassembles same-date repayment+contribution pairs
// into combined rows; everything else stays a single row.
func groupMemberPayments(payments []domain.Payment) []MemberPaymentRow {
	byDate := make(map[string][]domain.Payment)
	dates := make([]string, 0)
	for _, p := range payments {
		if _, ok := byDate[p.Date]; !ok {
			dates = append(dates, p.Date)
		}
		byDate[p.Date] = append(byDate[p.Date], p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	rows := make([]MemberPaymentRow, 0, len(payments))
	for _, date := range dates {
		sameDate := byDate[date]

		var repayment, contribution *domain.Payment
		for i := range sameDate {
			switch {
			case repayment == nil && sameDate[i].Type == domain.PaymentRepayment:
				repayment = &sameDate[i]
			case contribution == nil && sameDate[i].Type == domain.PaymentContribution:
				contribution = &sameDate[i]
			}
		}

		if repayment != nil && contribution != nil && repayment.ID != contribution.ID {
			note := repayment.Note
			if note == "" {
				note = contribution.Note
			}
			receipt := repayment.ReceiptImagePath
			if receipt == "" {
				receipt = contribution.ReceiptImagePath
			}
			rows = append(rows, MemberPaymentRow{
				Kind:               "combined",
				Date:               date,
				TotalAmount:        repayment.Amount + contribution.Amount,
				RepaymentAmount:    repayment.Amount,
				ContributionAmount: contribution.Amount,
				Note:               note,
				ReceiptImagePath:   receipt,
				ExcessContribution: strings.Contains(contribution.Note, "مازاد وام به سپرده"),
			})
			continue
		}

		for i := range sameDate {
			p := sameDate[i]
			rows = append(rows, MemberPaymentRow{
				Kind:             "single",
				Date:             date,
				TotalAmount:      p.Amount,
				Note:             p.Note,
				ReceiptImagePath: p.ReceiptImagePath,
				Payment:          &p,
			})
		}
	}

	return rows
}
