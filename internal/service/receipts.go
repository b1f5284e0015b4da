package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var receiptTracer = otel.Tracer("service/receipts")

const (
	msgReceiptApproved = "رسید پرداخت شما تأیید و در حساب شما ثبت شد."
	msgReceiptRejected = "رسید پرداخت شما رد شد. لطفاً با مدیر صندوق تماس بگیرید."
)

// ReceiptService reviews payment receipts submitted through the Telegram
// bot. Approval posts the payment through the ledger with the same
// classification and confirmation rules as a manual entry.
type ReceiptService struct {
	store    port.FundStore
	ledger   *LedgerService
	notifier port.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewReceiptService creates the receipt review service.
func NewReceiptService(store port.FundStore, ledger *LedgerService, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{store: store, ledger: ledger, notifier: notifier, metrics: metrics, logger: logger}
}

// List returns receipt submissions, optionally filtered by status, newest
// first.
func (s *ReceiptService) List(ctx context.Context, status domain.ReceiptStatus) ([]domain.ReceiptSubmission, error) {
	ctx, span := receiptTracer.Start(ctx, "ReceiptService.List")
	defer span.End()

	receipts, err := s.store.ListReceipts(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].CreatedAt > receipts[j].CreatedAt
	})
	return receipts, nil
}

// ApproveRequest carries the admin-supplied details for a receipt: the
// image shows the transfer but the amount, date and intent come from review.
type ApproveRequest struct {
	Amount  int64                `json:"amount"`
	Date    string               `json:"date"`
	Intent  domain.PaymentIntent `json:"type"`
	Note    string               `json:"note,omitempty"`
	Confirm bool                 `json:"confirm,omitempty"`
}

// Approve posts the receipt's payment through the ledger and marks the
// submission approved. Classification runs exactly as for a manual entry,
// including the confirmation gate for splits; the resulting payment records
// carry the receipt image path.
func (s *ReceiptService) Approve(ctx context.Context, id string, req *ApproveRequest) (*PaymentResult, error) {
	ctx, span := receiptTracer.Start(ctx, "ReceiptService.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("receipt.id", id))

	receipt, err := s.store.GetReceipt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	if receipt.Status == domain.ReceiptApproved {
		return nil, &domain.ErrBusinessRule{Message: "این رسید قبلاً تأیید شده است."}
	}

	result, err := s.ledger.PostPayment(ctx, &PaymentRequest{
		MemberID:         receipt.MemberID,
		Amount:           req.Amount,
		Date:             req.Date,
		Intent:           req.Intent,
		Note:             strings.TrimSpace(req.Note),
		Confirm:          req.Confirm,
		receiptImagePath: receipt.ImagePath,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateReceiptStatus(ctx, id, domain.ReceiptApproved); err != nil {
		// The payment is already posted; the submission row is now behind.
		return nil, &domain.ErrInconsistentState{Operation: "approve receipt", Err: err}
	}

	s.notifyMember(ctx, receipt.MemberID, msgReceiptApproved)

	s.logger.Info("receipt approved",
		zap.String("receipt_id", id),
		zap.String("member_id", receipt.MemberID),
		zap.Int64("amount", req.Amount),
	)
	return result, nil
}

// Reject marks a receipt submission rejected and notifies the member.
func (s *ReceiptService) Reject(ctx context.Context, id string) (*domain.ReceiptSubmission, error) {
	ctx, span := receiptTracer.Start(ctx, "ReceiptService.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("receipt.id", id))

	receipt, err := s.store.GetReceipt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	if err := s.store.UpdateReceiptStatus(ctx, id, domain.ReceiptRejected); err != nil {
		return nil, fmt.Errorf("update receipt status: %w", err)
	}
	receipt.Status = domain.ReceiptRejected

	s.notifyMember(ctx, receipt.MemberID, msgReceiptRejected)

	s.logger.Info("receipt rejected", zap.String("receipt_id", id))
	return receipt, nil
}

// notifyMember looks the member up for their chat id and sends the review
// outcome. Missing chat ids and delivery failures are non-fatal.
func (s *ReceiptService) notifyMember(ctx context.Context, memberID, text string) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil || member.TelegramChatID == "" {
		return
	}
	if err := s.notifier.SendMessage(ctx, member.TelegramChatID, text); err != nil {
		s.metrics.IncrNotifyError()
		s.logger.Warn("receipt notification failed",
			zap.String("member_id", memberID),
			zap.Error(err),
		)
	}
}
