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

var memberTracer = otel.Tracer("service/members")

const memberListKey = "members:all"

// MemberService manages member profiles. Balances are owned by the ledger
// and loan services; profile updates never touch them.
type MemberService struct {
	store   port.FundStore
	cache   port.Cache[[]domain.Member]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewMemberService creates the member service.
func NewMemberService(store port.FundStore, cache port.Cache[[]domain.Member], metrics *observability.Metrics, logger *zap.Logger) *MemberService {
	return &MemberService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// List returns all members sorted by full name. The list is served from a
// short TTL cache that write paths invalidate.
func (s *MemberService) List(ctx context.Context) ([]domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.List")
	defer span.End()

	if cached, ok := s.cache.Get(memberListKey); ok {
		s.metrics.IncrCacheHit("members")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("members")

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].FullName < members[j].FullName
	})

	s.cache.Set(memberListKey, members)
	return members, nil
}

// Get returns one member by id.
func (s *MemberService) Get(ctx context.Context, id string) (*domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id))

	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}

// MemberInput is the member create/update payload. Balance fields are only
// honored on create, for seeding rows migrated from the old sheet.
type MemberInput struct {
	FullName       string              `json:"fullName"`
	Phone          string              `json:"phone"`
	NationalID     string              `json:"nationalId,omitempty"`
	JoinDate       string              `json:"joinDate"`
	MonthlyAmount  int64               `json:"monthlyAmount"`
	Status         domain.MemberStatus `json:"status,omitempty"`
	LoanAmount     int64               `json:"loanAmount,omitempty"`
	Deposit        int64               `json:"deposit,omitempty"`
	LoanBalance    int64               `json:"loanBalance,omitempty"`
	TelegramChatID string              `json:"telegramChatId,omitempty"`
}

func (in *MemberInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return &domain.ErrValidation{Field: "fullName", Message: "نام عضو را وارد کنید."}
	}
	if in.MonthlyAmount < 0 {
		return &domain.ErrValidation{Field: "monthlyAmount", Message: "مبلغ سپرده ماهانه معتبر نیست."}
	}
	return nil
}

// digitsOnly strips everything but ASCII digits, after normalizing
// Persian/Arabic ones.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range shamsi.ToASCIIDigits(s) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Create adds a new member.
func (s *MemberService) Create(ctx context.Context, in *MemberInput) (*domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Create")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.MemberActive
	}
	clamp := func(v int64) int64 {
		if v < 0 {
			return 0
		}
		return v
	}

	member := &domain.Member{
		ID:             uuid.NewString(),
		FullName:       strings.TrimSpace(in.FullName),
		Phone:          strings.TrimSpace(in.Phone),
		NationalID:     digitsOnly(in.NationalID),
		JoinDate:       shamsi.NormalizeDate(in.JoinDate),
		MonthlyAmount:  clamp(in.MonthlyAmount),
		Status:         status,
		LoanAmount:     clamp(in.LoanAmount),
		Deposit:        clamp(in.Deposit),
		LoanBalance:    clamp(in.LoanBalance),
		TelegramChatID: strings.TrimSpace(in.TelegramChatID),
		Version:        1,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	created, err := s.store.CreateMember(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	s.cache.Delete(memberListKey)

	s.logger.Info("member created", zap.String("member_id", created.ID))
	return created, nil
}

// Update rewrites a member's profile fields. Balances are carried over from
// the stored snapshot untouched.
func (s *MemberService) Update(ctx context.Context, id string, in *MemberInput) (*domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id))

	if err := in.validate(); err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	updated := *member
	updated.FullName = strings.TrimSpace(in.FullName)
	updated.Phone = strings.TrimSpace(in.Phone)
	updated.NationalID = digitsOnly(in.NationalID)
	updated.JoinDate = shamsi.NormalizeDate(in.JoinDate)
	updated.MonthlyAmount = in.MonthlyAmount
	if in.Status != "" {
		updated.Status = in.Status
	}
	if in.TelegramChatID != "" {
		updated.TelegramChatID = strings.TrimSpace(in.TelegramChatID)
	}

	saved, err := s.store.UpdateMember(ctx, &updated, member.Version)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	s.cache.Delete(memberListKey)

	s.logger.Info("member updated", zap.String("member_id", id))
	return saved, nil
}

// Deactivate marks a member inactive. Members are never deleted; their
// payment history must stay reachable.
func (s *MemberService) Deactivate(ctx context.Context, id string) (*domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Deactivate")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id))

	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if member.Status == domain.MemberInactive {
		return member, nil
	}

	updated := *member
	updated.Status = domain.MemberInactive
	saved, err := s.store.UpdateMember(ctx, &updated, member.Version)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	s.cache.Delete(memberListKey)

	s.logger.Info("member deactivated", zap.String("member_id", id))
	return saved, nil
}
