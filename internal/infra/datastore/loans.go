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

// ListLoans fetches all loans.
func (c *Client) ListLoans(ctx context.Context) ([]domain.Loan, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListLoans")
	defer span.End()

	return getList[domain.Loan](ctx, c, "list", "loans")
}

// ListMemberLoans fetches the loans of one member.
func (c *Client) ListMemberLoans(ctx context.Context, memberID string) ([]domain.Loan, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListMemberLoans")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID))

	return getList[domain.Loan](ctx, c, "list", "loans?memberId="+memberID)
}

// GetLoan fetches one loan by id.
func (c *Client) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	ctx, span := tracer.Start(ctx, "Datastore.GetLoan")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", id))

	var loan *domain.Loan

	err := c.execute(ctx, "get", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "loans/"+id, nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "loan", ID: id})
		}
		var l domain.Loan
		if err := json.Unmarshal(body, &l); err != nil {
			return resilience.Permanent(fmt.Errorf("decode loan: %w", err))
		}
		loan = &l
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "datastore/loans", Err: err}
	}

	return loan, nil
}

// CreateLoan writes a new loan row.
func (c *Client) CreateLoan(ctx context.Context, l *domain.Loan) (*domain.Loan, error) {
	ctx, span := tracer.Start(ctx, "Datastore.CreateLoan")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", l.MemberID))

	var created *domain.Loan

	err := c.execute(ctx, "create", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "loans", l, nil)
		if err != nil {
			return err
		}
		if body == nil {
			created = l
			return nil
		}
		var row domain.Loan
		if err := json.Unmarshal(body, &row); err != nil {
			return resilience.Permanent(fmt.Errorf("decode loan: %w", err))
		}
		created = &row
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "datastore/loans", Err: err}
	}

	return created, nil
}

// UpdateLoanStatus patches only the status field of a loan.
func (c *Client) UpdateLoanStatus(ctx context.Context, id string, status domain.LoanStatus) error {
	ctx, span := tracer.Start(ctx, "Datastore.UpdateLoanStatus")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", id), attribute.String("loan.status", string(status)))

	patch := map[string]any{"status": status}

	err := c.execute(ctx, "update", func() error {
		_, err := c.doRequest(ctx, http.MethodPatch, "loans/"+id, patch, nil)
		return err
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "datastore/loans", Err: err}
	}
	return nil
}
