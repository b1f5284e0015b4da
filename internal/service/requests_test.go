package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/service"

	"go.uber.org/zap"
)

func TestRequestApprove_NotifiesRequester(t *testing.T) {
	store := &mockStore{
		requests: []domain.LoanRequest{{ID: "r1", TelegramChatID: "12345", Status: domain.RequestPending}},
	}
	notifier := &mockNotifier{}
	svc := service.NewRequestService(store, notifier, observability.NewMetrics(), zap.NewNop())

	request, err := svc.Approve(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if request.Status != domain.RequestApproved {
		t.Errorf("status = %q, want approved", request.Status)
	}
	if len(notifier.sent) != 1 || !strings.HasPrefix(notifier.sent[0], "12345:") {
		t.Errorf("sent = %v", notifier.sent)
	}
}

func TestRequestReject_ReasonInMessage(t *testing.T) {
	store := &mockStore{
		requests: []domain.LoanRequest{{ID: "r1", TelegramChatID: "12345", Status: domain.RequestPending}},
	}
	notifier := &mockNotifier{}
	svc := service.NewRequestService(store, notifier, observability.NewMetrics(), zap.NewNop())

	request, err := svc.Reject(context.Background(), "r1", "مدارک ناقص است")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if request.Status != domain.RequestRejected || request.RejectReason != "مدارک ناقص است" {
		t.Errorf("request = %+v", request)
	}
	if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0], "مدارک ناقص است") {
		t.Errorf("sent = %v", notifier.sent)
	}
}

func TestRequestApprove_NotificationFailureIsNonFatal(t *testing.T) {
	store := &mockStore{
		requests: []domain.LoanRequest{{ID: "r1", TelegramChatID: "12345", Status: domain.RequestPending}},
	}
	notifier := &mockNotifier{sendErr: fmt.Errorf("telegram down")}
	svc := service.NewRequestService(store, notifier, observability.NewMetrics(), zap.NewNop())

	request, err := svc.Approve(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if request.Status != domain.RequestApproved {
		t.Errorf("status = %q, want approved despite notify failure", request.Status)
	}
}

func TestReceiptApprove_PostsThroughLedger(t *testing.T) {
	store := &mockStore{
		members:  []domain.Member{{ID: "m1", Deposit: 0, TelegramChatID: "777", Version: 1}},
		receipts: []domain.ReceiptSubmission{{ID: "rc1", MemberID: "m1", ImagePath: "receipts/rc1.jpg", Status: domain.ReceiptPending}},
	}
	notifier := &mockNotifier{}
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	ledger := service.NewLedgerService(store, metrics, logger)
	svc := service.NewReceiptService(store, ledger, notifier, metrics, logger)

	result, err := svc.Approve(context.Background(), "rc1", &service.ApproveRequest{
		Amount: 500_000,
		Date:   "1403-05-01",
		Intent: domain.IntentContribution,
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if len(result.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(result.Payments))
	}
	if result.Payments[0].ReceiptImagePath != "receipts/rc1.jpg" {
		t.Errorf("receipt path = %q", result.Payments[0].ReceiptImagePath)
	}
	if store.receipts[0].Status != domain.ReceiptApproved {
		t.Errorf("receipt status = %q, want approved", store.receipts[0].Status)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("member not notified: %v", notifier.sent)
	}
}

func TestReceiptApprove_ConfirmationGateApplies(t *testing.T) {
	store := &mockStore{
		members:  []domain.Member{{ID: "m1", LoanBalance: 800_000, Version: 1}},
		loans:    []domain.Loan{{ID: "l1", MemberID: "m1", Amount: 1_200_000, DueMonths: 12, Status: domain.LoanActive}},
		receipts: []domain.ReceiptSubmission{{ID: "rc1", MemberID: "m1", ImagePath: "receipts/rc1.jpg", Status: domain.ReceiptPending}},
	}
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	ledger := service.NewLedgerService(store, metrics, logger)
	svc := service.NewReceiptService(store, ledger, &mockNotifier{}, metrics, logger)

	_, err := svc.Approve(context.Background(), "rc1", &service.ApproveRequest{
		Amount: 900_000,
		Date:   "1403-05-01",
		Intent: domain.IntentRepayment,
	})

	var confirmation *domain.ErrConfirmationRequired
	if !errors.As(err, &confirmation) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}
	if store.receipts[0].Status != domain.ReceiptPending {
		t.Errorf("receipt status = %q, want still pending", store.receipts[0].Status)
	}
}

func TestReceiptReject_Notifies(t *testing.T) {
	store := &mockStore{
		members:  []domain.Member{{ID: "m1", TelegramChatID: "777", Version: 1}},
		receipts: []domain.ReceiptSubmission{{ID: "rc1", MemberID: "m1", Status: domain.ReceiptPending}},
	}
	notifier := &mockNotifier{}
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	ledger := service.NewLedgerService(store, metrics, logger)
	svc := service.NewReceiptService(store, ledger, notifier, metrics, logger)

	receipt, err := svc.Reject(context.Background(), "rc1")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if receipt.Status != domain.ReceiptRejected {
		t.Errorf("status = %q, want rejected", receipt.Status)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("member not notified: %v", notifier.sent)
	}
}

func TestFundSummary_Totals(t *testing.T) {
	store := &mockStore{
		payments: []domain.Payment{
			{ID: "p1", MemberID: "m1", Amount: 500_000, Type: domain.PaymentContribution},
			{ID: "p2", MemberID: "m1", Amount: 300_000, Type: domain.PaymentContribution},
			{ID: "p3", MemberID: "m2", Amount: 200_000, Type: domain.PaymentRepayment},
		},
		loans: []domain.Loan{
			{ID: "l1", MemberID: "m2", Amount: 1_000_000, DueMonths: 10, Status: domain.LoanActive},
			{ID: "l2", MemberID: "m3", Amount: 400_000, DueMonths: 4, Status: domain.LoanSettled},
		},
	}
	svc := service.NewFundService(store, observability.NewMetrics(), zap.NewNop())

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if summary.TotalContributions != 800_000 || summary.TotalRepayments != 200_000 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.ActiveLoanPrincipal != 1_000_000 {
		t.Errorf("activeLoanPrincipal = %d, want 1000000 (settled excluded)", summary.ActiveLoanPrincipal)
	}
	if summary.Balance != 0 {
		t.Errorf("balance = %d, want 0", summary.Balance)
	}
}

func TestFundReport_Ceiling(t *testing.T) {
	store := &mockStore{
		members: []domain.Member{
			{ID: "m1", Deposit: 2_000_000, LoanBalance: 500_000},
			{ID: "m2", Deposit: 1_000_000, LoanBalance: 0},
		},
	}
	svc := service.NewFundService(store, observability.NewMetrics(), zap.NewNop())

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if report.TotalDeposits != 3_000_000 || report.TotalLoanBalances != 500_000 {
		t.Errorf("report = %+v", report)
	}
	if report.LendingCeiling != 2_500_000 {
		t.Errorf("ceiling = %d, want 2500000", report.LendingCeiling)
	}
	if report.MemberCount != 2 {
		t.Errorf("memberCount = %d, want 2", report.MemberCount)
	}
}
