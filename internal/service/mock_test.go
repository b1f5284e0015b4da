package service_test

import (
	"context"
	"fmt"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
)

// mockStore is a hand-rolled FundStore backed by in-memory slices. Tests
// override individual behaviors through the function fields.
type mockStore struct {
	members  []domain.Member
	loans    []domain.Loan
	payments []domain.Payment
	fundLog  []domain.FundLogEntry
	requests []domain.LoanRequest
	receipts []domain.ReceiptSubmission
	admins   []domain.AdminUser

	createPaymentErr func(p *domain.Payment) error
	updateMemberErr  func(m *domain.Member) error
}

func (s *mockStore) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return append([]domain.Member(nil), s.members...), nil
}

func (s *mockStore) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	for i := range s.members {
		if s.members[i].ID == id {
			m := s.members[i]
			return &m, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "member", ID: id}
}

func (s *mockStore) CreateMember(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	s.members = append(s.members, *m)
	return m, nil
}

func (s *mockStore) UpdateMember(ctx context.Context, m *domain.Member, expectedVersion int64) (*domain.Member, error) {
	if s.updateMemberErr != nil {
		if err := s.updateMemberErr(m); err != nil {
			return nil, err
		}
	}
	for i := range s.members {
		if s.members[i].ID == m.ID {
			if s.members[i].Version != expectedVersion {
				return nil, &domain.ErrStaleState{Resource: "member", ID: m.ID}
			}
			saved := *m
			saved.Version = expectedVersion + 1
			s.members[i] = saved
			return &saved, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "member", ID: m.ID}
}

func (s *mockStore) ListLoans(ctx context.Context) ([]domain.Loan, error) {
	return append([]domain.Loan(nil), s.loans...), nil
}

func (s *mockStore) ListMemberLoans(ctx context.Context, memberID string) ([]domain.Loan, error) {
	var out []domain.Loan
	for _, l := range s.loans {
		if l.MemberID == memberID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *mockStore) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	for i := range s.loans {
		if s.loans[i].ID == id {
			l := s.loans[i]
			return &l, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "loan", ID: id}
}

func (s *mockStore) CreateLoan(ctx context.Context, l *domain.Loan) (*domain.Loan, error) {
	s.loans = append(s.loans, *l)
	return l, nil
}

func (s *mockStore) UpdateLoanStatus(ctx context.Context, id string, status domain.LoanStatus) error {
	for i := range s.loans {
		if s.loans[i].ID == id {
			s.loans[i].Status = status
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "loan", ID: id}
}

func (s *mockStore) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return append([]domain.Payment(nil), s.payments...), nil
}

func (s *mockStore) ListMemberPayments(ctx context.Context, memberID string) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range s.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *mockStore) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	if s.createPaymentErr != nil {
		if err := s.createPaymentErr(p); err != nil {
			return nil, err
		}
	}
	s.payments = append(s.payments, *p)
	return p, nil
}

func (s *mockStore) ListFundLog(ctx context.Context) ([]domain.FundLogEntry, error) {
	return append([]domain.FundLogEntry(nil), s.fundLog...), nil
}

func (s *mockStore) AppendFundLog(ctx context.Context, e *domain.FundLogEntry) (*domain.FundLogEntry, error) {
	s.fundLog = append(s.fundLog, *e)
	return e, nil
}

func (s *mockStore) ListLoanRequests(ctx context.Context) ([]domain.LoanRequest, error) {
	return append([]domain.LoanRequest(nil), s.requests...), nil
}

func (s *mockStore) GetLoanRequest(ctx context.Context, id string) (*domain.LoanRequest, error) {
	for i := range s.requests {
		if s.requests[i].ID == id {
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "loan request", ID: id}
}

func (s *mockStore) UpdateLoanRequest(ctx context.Context, id string, status domain.LoanRequestStatus, rejectReason string) (*domain.LoanRequest, error) {
	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests[i].Status = status
			s.requests[i].RejectReason = rejectReason
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "loan request", ID: id}
}

func (s *mockStore) ListReceipts(ctx context.Context, status domain.ReceiptStatus) ([]domain.ReceiptSubmission, error) {
	var out []domain.ReceiptSubmission
	for _, r := range s.receipts {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *mockStore) GetReceipt(ctx context.Context, id string) (*domain.ReceiptSubmission, error) {
	for i := range s.receipts {
		if s.receipts[i].ID == id {
			r := s.receipts[i]
			return &r, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "receipt", ID: id}
}

func (s *mockStore) UpdateReceiptStatus(ctx context.Context, id string, status domain.ReceiptStatus) error {
	for i := range s.receipts {
		if s.receipts[i].ID == id {
			s.receipts[i].Status = status
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "receipt", ID: id}
}

func (s *mockStore) GetAdminByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	for i := range s.admins {
		if s.admins[i].Username == username {
			a := s.admins[i]
			return &a, nil
		}
	}
	return nil, nil
}

// mockNotifier records sent messages.
type mockNotifier struct {
	sent    []string
	sendErr error
}

func (n *mockNotifier) SendMessage(ctx context.Context, chatID, text string) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, fmt.Sprintf("%s:%s", chatID, text))
	return nil
}

func (n *mockNotifier) Check(ctx context.Context) (*domain.BotInfo, error) {
	return &domain.BotInfo{Connected: true, Username: "fund_bot", Message: "ربات متصل است."}, nil
}
