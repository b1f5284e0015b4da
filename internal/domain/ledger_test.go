package domain_test

import (
	"errors"
	"testing"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
)

func member(deposit, loanBalance int64) domain.Member {
	return domain.Member{
		ID:          "m1",
		FullName:    "علی رضایی",
		Status:      domain.MemberActive,
		Deposit:     deposit,
		LoanBalance: loanBalance,
	}
}

func TestApplyLegContribution(t *testing.T) {
	m, p := domain.ApplyLeg(member(1000000, 0), domain.PaymentLeg{
		Type:   domain.PaymentContribution,
		Amount: 500000,
		Note:   "سپرده",
	}, "1403-05-01")

	if m.Deposit != 1500000 {
		t.Errorf("deposit = %d, want 1500000", m.Deposit)
	}
	if p.Type != domain.PaymentContribution || p.Amount != 500000 || p.Date != "1403-05-01" {
		t.Errorf("unexpected payment record: %+v", p)
	}
	if p.MemberID != "m1" {
		t.Errorf("payment memberId = %q", p.MemberID)
	}
}

func TestApplyLegRepaymentClampsAtZero(t *testing.T) {
	m, p := domain.ApplyLeg(member(0, 300000), domain.PaymentLeg{
		Type:   domain.PaymentRepayment,
		Amount: 500000,
	}, "1403-05-01")

	if m.LoanBalance != 0 {
		t.Errorf("loan balance = %d, want 0 (clamped)", m.LoanBalance)
	}
	// The record keeps the full posted amount even when the balance clamps.
	if p.Amount != 500000 {
		t.Errorf("payment amount = %d, want 500000", p.Amount)
	}
}

func TestApplyDecisionSplit(t *testing.T) {
	d, err := domain.Classify(domain.ClassifyInput{
		Intent:        domain.IntentRepayment,
		Amount:        3000000,
		HasActiveLoan: true,
		Installment:   1000000,
		LoanBalance:   2500000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, payments := domain.ApplyDecision(member(200000, 2500000), d, "1403-05-01")

	if m.LoanBalance != 0 {
		t.Errorf("loan balance = %d, want 0", m.LoanBalance)
	}
	if m.Deposit != 700000 {
		t.Errorf("deposit = %d, want 700000", m.Deposit)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payment records, got %d", len(payments))
	}
	if payments[0].Type != domain.PaymentRepayment || payments[1].Type != domain.PaymentContribution {
		t.Errorf("records out of order: %+v", payments)
	}
}

func TestApplyWithdrawalDeductLoan(t *testing.T) {
	res, err := domain.ApplyWithdrawal(member(2000000, 1500000), domain.WithdrawDeductLoan, 1000000, "", "1403-05-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Member.Deposit != 1000000 || res.Member.LoanBalance != 500000 {
		t.Errorf("balances = deposit %d / loan %d, want 1000000 / 500000",
			res.Member.Deposit, res.Member.LoanBalance)
	}
	if res.Payment == nil {
		t.Fatal("deduct_loan must produce a payment record")
	}
	if res.Payment.Type != domain.PaymentRepayment {
		t.Errorf("payment type = %q, want repayment", res.Payment.Type)
	}
	if res.Payment.Note != "برداشت از سپرده — کسر از وام" {
		t.Errorf("unexpected note %q", res.Payment.Note)
	}
	if res.LogEntry != nil {
		t.Error("deduct_loan must not write a fund log entry")
	}
}

func TestApplyWithdrawalDeductLoanLimits(t *testing.T) {
	tests := []struct {
		name    string
		deposit int64
		loan    int64
		amount  int64
	}{
		{"over deposit", 500000, 2000000, 600000},
		{"over loan balance", 2000000, 500000, 600000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ApplyWithdrawal(member(tt.deposit, tt.loan), domain.WithdrawDeductLoan, tt.amount, "", "1403-05-10")
			var rule *domain.ErrBusinessRule
			if !errors.As(err, &rule) {
				t.Fatalf("expected ErrBusinessRule, got %v", err)
			}
		})
	}
}

func TestApplyWithdrawalTransfer(t *testing.T) {
	res, err := domain.ApplyWithdrawal(member(2000000, 1500000), domain.WithdrawTransfer, 800000, "6037998811112222", "1403-05-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Member.Deposit != 1200000 {
		t.Errorf("deposit = %d, want 1200000", res.Member.Deposit)
	}
	if res.Member.LoanBalance != 1500000 {
		t.Errorf("transfer must not touch the loan balance, got %d", res.Member.LoanBalance)
	}
	if res.Payment != nil {
		t.Error("transfer must not produce a payment record")
	}
	if res.LogEntry == nil {
		t.Fatal("transfer must produce a fund log entry")
	}
	if res.LogEntry.Type != domain.FundLogOut || res.LogEntry.RefType != domain.RefWithdrawalTransfer {
		t.Errorf("unexpected log entry: %+v", res.LogEntry)
	}
}

func TestApplyWithdrawalTransferRequiresCard(t *testing.T) {
	_, err := domain.ApplyWithdrawal(member(2000000, 0), domain.WithdrawTransfer, 800000, "", "1403-05-10")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestHasActiveLoan(t *testing.T) {
	loans := []domain.Loan{
		{ID: "l1", MemberID: "m1", Status: domain.LoanSettled},
		{ID: "l2", MemberID: "m2", Status: domain.LoanActive},
		{ID: "l3", MemberID: "m3"}, // legacy row, no status
	}
	if domain.HasActiveLoan(loans, "m1") {
		t.Error("settled loan should not count as active")
	}
	if !domain.HasActiveLoan(loans, "m2") {
		t.Error("active loan not detected")
	}
	if !domain.HasActiveLoan(loans, "m3") {
		t.Error("legacy loan with empty status must count as active")
	}
	if domain.HasActiveLoan(loans, "m4") {
		t.Error("member without loans reported active")
	}
}

func TestLendingCeiling(t *testing.T) {
	members := []domain.Member{
		{Deposit: 5000000, LoanBalance: 2000000},
		{Deposit: 3000000, LoanBalance: 1000000},
	}
	if got := domain.LendingCeiling(members); got != 5000000 {
		t.Errorf("ceiling = %d, want 5000000", got)
	}

	overdrawn := []domain.Member{{Deposit: 1000000, LoanBalance: 4000000}}
	if got := domain.LendingCeiling(overdrawn); got != 0 {
		t.Errorf("ceiling = %d, want 0 (floored)", got)
	}
}
