package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/service"

	"go.uber.org/zap"
)

func newLoans(store *mockStore) *service.LoanService {
	return service.NewLoanService(store, observability.NewMetrics(), zap.NewNop())
}

func TestDisburse_Success(t *testing.T) {
	store := &mockStore{
		members: []domain.Member{
			{ID: "m1", Deposit: 2_000_000, Version: 1},
			{ID: "m2", Deposit: 3_000_000, Version: 1},
		},
	}
	svc := newLoans(store)

	result, err := svc.Disburse(context.Background(), &service.DisburseRequest{
		MemberID:  "m1",
		Amount:    1_200_000,
		Date:      "1403-05-01",
		DueMonths: 12,
	})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}

	if result.Loan.Status != domain.LoanActive || result.Loan.DueMonths != 12 {
		t.Errorf("loan = %+v", result.Loan)
	}
	if result.Member.LoanBalance != 1_200_000 || result.Member.LoanAmount != 1_200_000 {
		t.Errorf("member = %+v", result.Member)
	}
	if len(store.fundLog) != 1 || store.fundLog[0].RefType != domain.RefLoanDisbursement {
		t.Errorf("fund log = %+v", store.fundLog)
	}
}

func TestDisburse_CeilingExceeded(t *testing.T) {
	// Ceiling = 2,000,000 deposits − 1,500,000 outstanding = 500,000.
	store := &mockStore{
		members: []domain.Member{
			{ID: "m1", Deposit: 2_000_000, LoanBalance: 1_500_000, Version: 1},
		},
	}
	svc := newLoans(store)

	_, err := svc.Disburse(context.Background(), &service.DisburseRequest{
		MemberID:  "m1",
		Amount:    600_000,
		Date:      "1403-05-01",
		DueMonths: 12,
	})

	var rule *domain.ErrBusinessRule
	if !errors.As(err, &rule) {
		t.Fatalf("err = %v, want ErrBusinessRule", err)
	}
	if len(store.loans) != 0 {
		t.Error("loan was created past the ceiling")
	}
}

func TestDisburse_OneActiveLoanPerMember(t *testing.T) {
	store := &mockStore{
		members: []domain.Member{{ID: "m1", Deposit: 5_000_000, Version: 1}},
		loans:   []domain.Loan{{ID: "l1", MemberID: "m1", Amount: 1_000_000, DueMonths: 10, Status: domain.LoanActive}},
	}
	svc := newLoans(store)

	_, err := svc.Disburse(context.Background(), &service.DisburseRequest{
		MemberID:  "m1",
		Amount:    500_000,
		Date:      "1403-05-01",
		DueMonths: 10,
	})

	var rule *domain.ErrBusinessRule
	if !errors.As(err, &rule) {
		t.Fatalf("err = %v, want ErrBusinessRule", err)
	}
	if rule.Message != "این عضو وام فعال دارد. تا تسویه وام قبلی امکان ثبت وام جدید نیست." {
		t.Errorf("message = %q", rule.Message)
	}
}

func TestDisburse_LegacyStatusCountsAsActive(t *testing.T) {
	store := &mockStore{
		members: []domain.Member{{ID: "m1", Deposit: 5_000_000, Version: 1}},
		loans:   []domain.Loan{{ID: "l1", MemberID: "m1", Amount: 1_000_000, DueMonths: 10, Status: ""}},
	}
	svc := newLoans(store)

	_, err := svc.Disburse(context.Background(), &service.DisburseRequest{
		MemberID:  "m1",
		Amount:    500_000,
		Date:      "1403-05-01",
		DueMonths: 10,
	})

	var rule *domain.ErrBusinessRule
	if !errors.As(err, &rule) {
		t.Fatalf("err = %v, want ErrBusinessRule for legacy-status loan", err)
	}
}

func TestSettle_IsIdempotent(t *testing.T) {
	store := &mockStore{
		loans: []domain.Loan{{ID: "l1", MemberID: "m1", Amount: 1_000_000, DueMonths: 10, Status: domain.LoanActive}},
	}
	svc := newLoans(store)

	loan, err := svc.Settle(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if loan.Status != domain.LoanSettled {
		t.Errorf("status = %q, want settled", loan.Status)
	}

	loan, err = svc.Settle(context.Background(), "l1")
	if err != nil {
		t.Fatalf("second Settle: %v", err)
	}
	if loan.Status != domain.LoanSettled {
		t.Errorf("status after re-settle = %q", loan.Status)
	}
}

func TestSchedule_WatermarkPaidFlags(t *testing.T) {
	store := &mockStore{
		loans: []domain.Loan{{ID: "l1", MemberID: "m1", Amount: 1_200_000, DueMonths: 12, Date: "1403-01-15", Status: domain.LoanActive}},
		payments: []domain.Payment{
			{ID: "p1", MemberID: "m1", Amount: 150_000, Date: "1403-02-10", Type: domain.PaymentRepayment},
			{ID: "p2", MemberID: "m1", Amount: 100_000, Date: "1403-03-10", Type: domain.PaymentRepayment},
			{ID: "p3", MemberID: "m1", Amount: 500_000, Date: "1403-02-10", Type: domain.PaymentContribution},
		},
	}
	svc := newLoans(store)

	schedule, err := svc.Schedule(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if schedule.Installment != 100_000 {
		t.Errorf("installment = %d, want 100000", schedule.Installment)
	}
	if schedule.TotalRepaid != 250_000 {
		t.Errorf("totalRepaid = %d, want 250000 (contributions excluded)", schedule.TotalRepaid)
	}
	if len(schedule.Months) != 12 {
		t.Fatalf("months = %d, want 12", len(schedule.Months))
	}
	// 250k repaid covers months 1 and 2 but not 3.
	if !schedule.Months[0].Paid || !schedule.Months[1].Paid || schedule.Months[2].Paid {
		t.Errorf("paid flags = %v %v %v", schedule.Months[0].Paid, schedule.Months[1].Paid, schedule.Months[2].Paid)
	}
	if schedule.Months[0].DueDate != "1403-02-15" {
		t.Errorf("first due date = %q, want 1403-02-15", schedule.Months[0].DueDate)
	}
	if schedule.Remaining != 950_000 {
		t.Errorf("remaining = %d, want 950000", schedule.Remaining)
	}
}
