package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ListLoanRequests fetches all Telegram loan requests.
func (c *Client) ListLoanRequests(ctx context.Context) ([]domain.LoanRequest, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListLoanRequests")
	defer span.End()

	return getList[domain.LoanRequest](ctx, c, "list", "loanRequests")
}

// GetLoanRequest fetches one loan request by id.
func (c *Client) GetLoanRequest(ctx context.Context, id string) (*domain.LoanRequest, error) {
	ctx, span := tracer.Start(ctx, "Datastore.GetLoanRequest")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", id))

	var request *domain.LoanRequest

	err := c.execute(ctx, "get", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "loanRequests/"+id, nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "loan request", ID: id})
		}
		var r domain.LoanRequest
		if err := json.Unmarshal(body, &r); err != nil {
			return resilience.Permanent(fmt.Errorf("decode loan request: %w", err))
		}
		request = &r
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "datastore/loanRequests", Err: err}
	}

	return request, nil
}

// UpdateLoanRequest patches the review status (and optional reject reason).
func (c *Client) UpdateLoanRequest(ctx context.Context, id string, status domain.LoanRequestStatus, rejectReason string) (*domain.LoanRequest, error) {
	ctx, span := tracer.Start(ctx, "Datastore.UpdateLoanRequest")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", id), attribute.String("request.status", string(status)))

	patch := map[string]any{"status": status}
	if rejectReason != "" {
		patch["rejectReason"] = rejectReason
	}

	var updated *domain.LoanRequest

	err := c.execute(ctx, "update", func() error {
		body, err := c.doRequest(ctx, http.MethodPatch, "loanRequests/"+id, patch, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return nil
		}
		var r domain.LoanRequest
		if err := json.Unmarshal(body, &r); err != nil {
			return resilience.Permanent(fmt.Errorf("decode loan request: %w", err))
		}
		updated = &r
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "datastore/loanRequests", Err: err}
	}

	return updated, nil
}

// ListReceipts fetches receipt submissions, optionally filtered by status.
func (c *Client) ListReceipts(ctx context.Context, status domain.ReceiptStatus) ([]domain.ReceiptSubmission, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListReceipts")
	defer span.End()

	path := "receiptSubmissions"
	if status != "" {
		path += "?status=" + string(status)
	}
	return getList[domain.ReceiptSubmission](ctx, c, "list", path)
}

// GetReceipt fetches one receipt submission by id.
func (c *Client) GetReceipt(ctx context.Context, id string) (*domain.ReceiptSubmission, error) {
	ctx, span := tracer.Start(ctx, "Datastore.GetReceipt")
	defer span.End()
	span.SetAttributes(attribute.String("receipt.id", id))

	var receipt *domain.ReceiptSubmission

	err := c.execute(ctx, "get", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "receiptSubmissions/"+id, nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "receipt", ID: id})
		}
		var r domain.ReceiptSubmission
		if err := json.Unmarshal(body, &r); err != nil {
			return resilience.Permanent(fmt.Errorf("decode receipt: %w", err))
		}
		receipt = &r
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "datastore/receiptSubmissions", Err: err}
	}

	return receipt, nil
}

// UpdateReceiptStatus patches the review status of a receipt submission.
func (c *Client) UpdateReceiptStatus(ctx context.Context, id string, status domain.ReceiptStatus) error {
	ctx, span := tracer.Start(ctx, "Datastore.UpdateReceiptStatus")
	defer span.End()
	span.SetAttributes(attribute.String("receipt.id", id), attribute.String("receipt.status", string(status)))

	patch := map[string]any{"status": status}
	if status == domain.ReceiptApproved {
		patch["approvedAt"] = nowISO()
	}

	err := c.execute(ctx, "update", func() error {
		_, err := c.doRequest(ctx, http.MethodPatch, "receiptSubmissions/"+id, patch, nil)
		return err
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "datastore/receiptSubmissions", Err: err}
	}
	return nil
}
