package domain

// MemberStatus is the lifecycle state of a fund member.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// Member is a fund member snapshot. Deposit and LoanBalance are the running
// ledger balances in integer Toman; LoanAmount is the cumulative amount ever
// disbursed and is informational only. Version increments on every write and
// backs the If-Match conditional update against the data store.
type Member struct {
	ID             string       `json:"id"`
	FullName       string       `json:"fullName"`
	Phone          string       `json:"phone"`
	NationalID     string       `json:"nationalId,omitempty"`
	JoinDate       string       `json:"joinDate"`
	MonthlyAmount  int64        `json:"monthlyAmount"`
	Status         MemberStatus `json:"status"`
	LoanAmount     int64        `json:"loanAmount"`
	Deposit        int64        `json:"deposit"`
	LoanBalance    int64        `json:"loanBalance"`
	TelegramChatID string       `json:"telegramChatId,omitempty"`
	Version        int64        `json:"version"`
	CreatedAt      string       `json:"createdAt,omitempty"`
}

// AdminUser is an admin account row from the data store.
type AdminUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	Name        string `json:"name"`
	Role        string `json:"role"`
}

// SuccessResponse is a generic success message body.
type SuccessResponse struct {
	Message string `json:"message"`
}
