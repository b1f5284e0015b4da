package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ListPayments fetches all payment records.
func (c *Client) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListPayments")
	defer span.End()

	return getList[domain.Payment](ctx, c, "list", "payments")
}

// ListMemberPayments fetches the payment records of one member.
func (c *Client) ListMemberPayments(ctx context.Context, memberID string) ([]domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListMemberPayments")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID))

	return getList[domain.Payment](ctx, c, "list", "payments?memberId="+memberID)
}

// CreatePayment writes one payment record. The caller stamps ID and
// CreatedAt before the write so a retried POST stays idempotent.
func (c *Client) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Datastore.CreatePayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("member.id", p.MemberID),
		attribute.String("payment.type", string(p.Type)),
	)

	var created *domain.Payment

	err := c.execute(ctx, "create", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "payments", p, nil)
		if err != nil {
			return err
		}
		if body == nil {
			created = p
			return nil
		}
		var row domain.Payment
		if err := json.Unmarshal(body, &row); err != nil {
			return resilience.Permanent(fmt.Errorf("decode payment: %w", err))
		}
		created = &row
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "datastore/payments", Err: err}
	}

	return created, nil
}

// ListFundLog fetches all fund log entries.
func (c *Client) ListFundLog(ctx context.Context) ([]domain.FundLogEntry, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListFundLog")
	defer span.End()

	return getList[domain.FundLogEntry](ctx, c, "list", "fundLog")
}

// AppendFundLog writes one fund log entry.
func (c *Client) AppendFundLog(ctx context.Context, e *domain.FundLogEntry) (*domain.FundLogEntry, error) {
	ctx, span := tracer.Start(ctx, "Datastore.AppendFundLog")
	defer span.End()
	span.SetAttributes(attribute.String("fundlog.refType", e.RefType))

	var created *domain.FundLogEntry

	err := c.execute(ctx, "create", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "fundLog", e, nil)
		if err != nil {
			return err
		}
		if body == nil {
			created = e
			return nil
		}
		var row domain.FundLogEntry
		if err := json.Unmarshal(body, &row); err != nil {
			return resilience.Permanent(fmt.Errorf("decode fund log entry: %w", err))
		}
		created = &row
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "datastore/fundLog", Err: err}
	}

	return created, nil
}
