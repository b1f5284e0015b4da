package domain

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive  LoanStatus = "active"
	LoanSettled LoanStatus = "settled"
)

// Loan is a disbursed loan. Date is the Shamsi disbursement date and
// DueMonths the repayment term. Legacy rows imported from the old sheet may
// have an empty status; those count as active.
type Loan struct {
	ID        string     `json:"id"`
	MemberID  string     `json:"memberId"`
	Amount    int64      `json:"amount"`
	Date      string     `json:"date"`
	DueMonths int        `json:"dueMonths"`
	Status    LoanStatus `json:"status"`
	Note      string     `json:"note,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`

	// Due-date reminder bookkeeping (set by the Telegram reminder job).
	Reminder7dSent         bool   `json:"reminder7dSent,omitempty"`
	Reminder3dSent         bool   `json:"reminder3dSent,omitempty"`
	Reminder1dSent         bool   `json:"reminder1dSent,omitempty"`
	ReminderDueCount       int    `json:"reminderDueCount,omitempty"`
	ReminderDueFirstSentAt string `json:"reminderDueFirstSentAt,omitempty"`
}

// IsActive reports whether the loan still counts against the member.
// Empty or unknown status means a legacy row and is treated as active.
func (l *Loan) IsActive() bool {
	return l.Status != LoanSettled
}

// LoanRequestStatus is the state of a Telegram-submitted loan request.
type LoanRequestStatus string

const (
	RequestPending  LoanRequestStatus = "pending"
	RequestApproved LoanRequestStatus = "approved"
	RequestRejected LoanRequestStatus = "rejected"
)

// LoanRequest is a membership/loan request submitted through the Telegram bot.
type LoanRequest struct {
	ID             string            `json:"id"`
	TelegramChatID string            `json:"telegramChatId"`
	UserName       string            `json:"userName"`
	Status         LoanRequestStatus `json:"status"`
	RejectReason   string            `json:"rejectReason,omitempty"`
	CreatedAt      string            `json:"createdAt"`
}

// ScheduleMonth is one row of a loan's installment schedule.
type ScheduleMonth struct {
	MonthIndex int    `json:"monthIndex"`
	DueDate    string `json:"dueDate"`
	Amount     int64  `json:"amount"`
	Paid       bool   `json:"paid"`
}

// LoanSchedule is the full schedule view for one loan.
type LoanSchedule struct {
	LoanID      string          `json:"loanId"`
	MemberID    string          `json:"memberId"`
	Installment int64           `json:"installment"`
	TotalRepaid int64           `json:"totalRepaid"`
	Remaining   int64           `json:"remaining"`
	Months      []ScheduleMonth `json:"months"`
}
