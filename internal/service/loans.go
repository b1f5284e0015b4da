package service

import (
	"context"
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

var loanTracer = otel.Tracer("service/loans")

// LoanService disburses, settles and reports on loans.
type LoanService struct {
	store   port.FundStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLoanService creates the loan service.
func NewLoanService(store port.FundStore, metrics *observability.Metrics, logger *zap.Logger) *LoanService {
	return &LoanService{store: store, metrics: metrics, logger: logger}
}

// List returns all loans, newest first.
func (s *LoanService) List(ctx context.Context) ([]domain.Loan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.List")
	defer span.End()

	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	sort.Slice(loans, func(i, j int) bool {
		return loans[i].CreatedAt > loans[j].CreatedAt
	})
	return loans, nil
}

// DisburseRequest is an operator loan entry.
type DisburseRequest struct {
	MemberID  string `json:"memberId"`
	Amount    int64  `json:"amount"`
	Date      string `json:"date"`
	DueMonths int    `json:"dueMonths"`
	Note      string `json:"note,omitempty"`
}

// DisburseResult is the created loan plus the updated member snapshot.
type DisburseResult struct {
	Loan   *domain.Loan   `json:"loan"`
	Member *domain.Member `json:"member"`
}

// Disburse grants a new loan. The amount is capped by the lending ceiling
// (total deposits minus outstanding balances) and a member can hold only one
// active loan at a time.
func (s *LoanService) Disburse(ctx context.Context, req *DisburseRequest) (*DisburseResult, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Disburse")
	defer span.End()
	span.SetAttributes(
		attribute.String("member.id", req.MemberID),
		attribute.Int64("loan.amount", req.Amount),
	)

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "مبلغ وام را وارد کنید."}
	}
	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" {
		return nil, &domain.ErrValidation{Field: "memberId", Message: "عضو را انتخاب کنید."}
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, &domain.ErrValidation{Field: "date", Message: "تاریخ را انتخاب کنید."}
	}

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	ceiling := domain.LendingCeiling(members)
	if req.Amount > ceiling {
		return nil, &domain.ErrBusinessRule{
			Message: fmt.Sprintf("مبلغ وام نمی‌تواند بیشتر از سقف قابل اعطا (%s) باشد.", shamsi.FormatCurrency(ceiling)),
		}
	}

	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	if domain.HasActiveLoan(loans, memberID) {
		return nil, &domain.ErrBusinessRule{
			Message: "این عضو وام فعال دارد. تا تسویه وام قبلی امکان ثبت وام جدید نیست.",
		}
	}

	var member *domain.Member
	for i := range members {
		if members[i].ID == memberID {
			member = &members[i]
			break
		}
	}
	if member == nil {
		return nil, &domain.ErrNotFound{Resource: "member", ID: memberID}
	}

	dueMonths := req.DueMonths
	if dueMonths < 1 {
		dueMonths = 1
	}

	loan := &domain.Loan{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		Amount:    req.Amount,
		Date:      shamsi.NormalizeDate(req.Date),
		DueMonths: dueMonths,
		Status:    domain.LoanActive,
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	created, err := s.store.CreateLoan(ctx, loan)
	if err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}

	entry := &domain.FundLogEntry{
		ID:        uuid.NewString(),
		Type:      domain.FundLogOut,
		Amount:    req.Amount,
		MemberID:  memberID,
		RefType:   domain.RefLoanDisbursement,
		RefID:     created.ID,
		Date:      created.Date,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.store.AppendFundLog(ctx, entry); err != nil {
		return nil, &domain.ErrInconsistentState{Operation: "disburse loan", Err: err}
	}

	updated := *member
	updated.LoanAmount += req.Amount
	updated.LoanBalance += req.Amount
	saved, err := s.store.UpdateMember(ctx, &updated, member.Version)
	if err != nil {
		return nil, &domain.ErrInconsistentState{Operation: "disburse loan", Err: err}
	}

	s.logger.Info("loan disbursed",
		zap.String("loan_id", created.ID),
		zap.String("member_id", memberID),
		zap.Int64("amount", req.Amount),
		zap.Int("due_months", dueMonths),
	)

	return &DisburseResult{Loan: created, Member: saved}, nil
}

// Settle marks a loan as settled. Settling is one way and does not touch the
// member's balances.
func (s *LoanService) Settle(ctx context.Context, loanID string) (*domain.Loan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Settle")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	if loan.Status == domain.LoanSettled {
		return loan, nil
	}

	if err := s.store.UpdateLoanStatus(ctx, loanID, domain.LoanSettled); err != nil {
		return nil, fmt.Errorf("update loan status: %w", err)
	}
	loan.Status = domain.LoanSettled

	s.logger.Info("loan settled", zap.String("loan_id", loanID), zap.String("member_id", loan.MemberID))
	return loan, nil
}

// Schedule computes the installment schedule of a loan, with each month's
// paid flag derived from the member's cumulative repayments.
func (s *LoanService) Schedule(ctx context.Context, loanID string) (*domain.LoanSchedule, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Schedule")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}

	payments, err := s.store.ListMemberPayments(ctx, loan.MemberID)
	if err != nil {
		return nil, fmt.Errorf("list member payments: %w", err)
	}

	var totalRepaid int64
	for _, p := range payments {
		if p.Type == domain.PaymentRepayment {
			totalRepaid += p.Amount
		}
	}

	return domain.BuildSchedule(loan, totalRepaid), nil
}
