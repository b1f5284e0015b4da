package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ListMembers fetches all members.
func (c *Client) ListMembers(ctx context.Context) ([]domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Datastore.ListMembers")
	defer span.End()

	return getList[domain.Member](ctx, c, "list", "members")
}

// GetMember fetches one member by id.
func (c *Client) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Datastore.GetMember")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id))

	var member *domain.Member

	err := c.execute(ctx, "get", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "members/"+id, nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "member", ID: id})
		}
		var m domain.Member
		if err := json.Unmarshal(body, &m); err != nil {
			return resilience.Permanent(fmt.Errorf("decode member: %w", err))
		}
		member = &m
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "datastore/members", Err: err}
	}

	return member, nil
}

// CreateMember writes a new member row.
func (c *Client) CreateMember(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Datastore.CreateMember")
	defer span.End()

	if m.Version == 0 {
		m.Version = 1
	}

	var created *domain.Member

	err := c.execute(ctx, "create", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "members", m, nil)
		if err != nil {
			return err
		}
		if body == nil {
			created = m
			return nil
		}
		var row domain.Member
		if err := json.Unmarshal(body, &row); err != nil {
			return resilience.Permanent(fmt.Errorf("decode member: %w", err))
		}
		created = &row
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "datastore/members", Err: err}
	}

	return created, nil
}

// UpdateMember writes the full member snapshot, conditional on the version
// the caller read. The store answers 412 when another writer got there
// first; that surfaces as ErrStaleState so the caller re-reads and retries.
func (c *Client) UpdateMember(ctx context.Context, m *domain.Member, expectedVersion int64) (*domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Datastore.UpdateMember")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", m.ID))

	snapshot := *m
	snapshot.Version = expectedVersion + 1

	headers := map[string]string{"If-Match": strconv.FormatInt(expectedVersion, 10)}

	var updated *domain.Member

	err := c.execute(ctx, "update", func() error {
		body, err := c.doRequest(ctx, http.MethodPatch, "members/"+snapshot.ID, &snapshot, headers)
		if err != nil {
			return err
		}
		if body == nil {
			updated = &snapshot
			return nil
		}
		var row domain.Member
		if err := json.Unmarshal(body, &row); err != nil {
			return resilience.Permanent(fmt.Errorf("decode member: %w", err))
		}
		updated = &row
		return nil
	})
	if err != nil {
		if errors.Is(err, errPreconditionFailed) {
			return nil, &domain.ErrStaleState{Resource: "member", ID: m.ID}
		}
		return nil, &domain.ErrExternalService{Service: "datastore/members", Err: err}
	}

	return updated, nil
}

// GetAdminByUsername looks up an admin account for login.
func (c *Client) GetAdminByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	ctx, span := tracer.Start(ctx, "Datastore.GetAdminByUsername")
	defer span.End()

	admins, err := getList[domain.AdminUser](ctx, c, "get", "admins?username="+username)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].Username == username {
			return &admins[i], nil
		}
	}
	return nil, nil
}
