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

var requestTracer = otel.Tracer("service/requests")

// Member-facing review notifications.
const (
	msgRequestApproved = "درخواست وام شما تأیید شد. برای ادامه با مدیر صندوق در تماس باشید."
	msgRequestRejected = "درخواست وام شما رد شد."
)

// RequestService reviews loan requests submitted through the Telegram bot.
type RequestService struct {
	store    port.FundStore
	notifier port.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewRequestService creates the loan-request review service.
func NewRequestService(store port.FundStore, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *RequestService {
	return &RequestService{store: store, notifier: notifier, metrics: metrics, logger: logger}
}

// List returns all loan requests, newest first.
func (s *RequestService) List(ctx context.Context) ([]domain.LoanRequest, error) {
	ctx, span := requestTracer.Start(ctx, "RequestService.List")
	defer span.End()

	requests, err := s.store.ListLoanRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loan requests: %w", err)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt > requests[j].CreatedAt
	})
	return requests, nil
}

// notify sends a review outcome to the requester. Delivery failures are
// logged and counted but do not fail the review; the status is already
// persisted.
func (s *RequestService) notify(ctx context.Context, chatID, text string) {
	if chatID == "" {
		return
	}
	if err := s.notifier.SendMessage(ctx, chatID, text); err != nil {
		s.metrics.IncrNotifyError()
		s.logger.Warn("loan request notification failed",
			zap.String("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// Approve marks a loan request approved and notifies the requester.
func (s *RequestService) Approve(ctx context.Context, id string) (*domain.LoanRequest, error) {
	ctx, span := requestTracer.Start(ctx, "RequestService.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", id))

	request, err := s.store.GetLoanRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get loan request: %w", err)
	}
	if request.Status == domain.RequestApproved {
		return request, nil
	}

	updated, err := s.store.UpdateLoanRequest(ctx, id, domain.RequestApproved, "")
	if err != nil {
		return nil, fmt.Errorf("update loan request: %w", err)
	}
	if updated == nil {
		request.Status = domain.RequestApproved
		updated = request
	}

	s.notify(ctx, request.TelegramChatID, msgRequestApproved)

	s.logger.Info("loan request approved", zap.String("request_id", id))
	return updated, nil
}

// Reject marks a loan request rejected, with an optional reason relayed to
// the requester.
func (s *RequestService) Reject(ctx context.Context, id, reason string) (*domain.LoanRequest, error) {
	ctx, span := requestTracer.Start(ctx, "RequestService.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", id))

	request, err := s.store.GetLoanRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get loan request: %w", err)
	}

	reason = strings.TrimSpace(reason)
	updated, err := s.store.UpdateLoanRequest(ctx, id, domain.RequestRejected, reason)
	if err != nil {
		return nil, fmt.Errorf("update loan request: %w", err)
	}
	if updated == nil {
		request.Status = domain.RequestRejected
		request.RejectReason = reason
		updated = request
	}

	text := msgRequestRejected
	if reason != "" {
		text = fmt.Sprintf("%s\nدلیل: %s", msgRequestRejected, reason)
	}
	s.notify(ctx, request.TelegramChatID, text)

	s.logger.Info("loan request rejected", zap.String("request_id", id))
	return updated, nil
}

// CheckBot verifies Telegram connectivity for the admin settings page.
func (s *RequestService) CheckBot(ctx context.Context) (*domain.BotInfo, error) {
	ctx, span := requestTracer.Start(ctx, "RequestService.CheckBot")
	defer span.End()

	return s.notifier.Check(ctx)
}
