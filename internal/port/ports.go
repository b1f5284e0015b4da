// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
)

// FundStore defines all data operations against the fund's data store.
// Implemented by the REST datastore adapter.
type FundStore interface {
	// Members
	ListMembers(ctx context.Context) ([]domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	CreateMember(ctx context.Context, m *domain.Member) (*domain.Member, error)
	// UpdateMember writes the full member snapshot conditionally on
	// expectedVersion; a mismatch yields ErrStaleState.
	UpdateMember(ctx context.Context, m *domain.Member, expectedVersion int64) (*domain.Member, error)

	// Loans
	ListLoans(ctx context.Context) ([]domain.Loan, error)
	ListMemberLoans(ctx context.Context, memberID string) ([]domain.Loan, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	CreateLoan(ctx context.Context, l *domain.Loan) (*domain.Loan, error)
	UpdateLoanStatus(ctx context.Context, id string, status domain.LoanStatus) error

	// Payments
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	ListMemberPayments(ctx context.Context, memberID string) ([]domain.Payment, error)
	CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error)

	// Fund log
	ListFundLog(ctx context.Context) ([]domain.FundLogEntry, error)
	AppendFundLog(ctx context.Context, e *domain.FundLogEntry) (*domain.FundLogEntry, error)

	// Loan requests
	ListLoanRequests(ctx context.Context) ([]domain.LoanRequest, error)
	GetLoanRequest(ctx context.Context, id string) (*domain.LoanRequest, error)
	UpdateLoanRequest(ctx context.Context, id string, status domain.LoanRequestStatus, rejectReason string) (*domain.LoanRequest, error)

	// Receipt submissions
	ListReceipts(ctx context.Context, status domain.ReceiptStatus) ([]domain.ReceiptSubmission, error)
	GetReceipt(ctx context.Context, id string) (*domain.ReceiptSubmission, error)
	UpdateReceiptStatus(ctx context.Context, id string, status domain.ReceiptStatus) error

	// Admin accounts
	GetAdminByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
}

// Notifier sends member-facing messages (Telegram).
type Notifier interface {
	SendMessage(ctx context.Context, chatID, text string) error
	Check(ctx context.Context) (*domain.BotInfo, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
