package domain

// FundLogDirection marks money flowing into or out of the fund's account.
type FundLogDirection string

const (
	FundLogIn  FundLogDirection = "in"
	FundLogOut FundLogDirection = "out"
)

// Fund log reference types.
const (
	RefWithdrawalTransfer = "withdrawal_transfer"
	RefLoanDisbursement   = "loan_disbursement"
)

// FundLogEntry is one movement on the fund's own account, e.g. a card
// transfer paid out for a deposit withdrawal.
type FundLogEntry struct {
	ID        string           `json:"id"`
	Type      FundLogDirection `json:"type"`
	Amount    int64            `json:"amount"`
	MemberID  string           `json:"memberId,omitempty"`
	RefType   string           `json:"refType"`
	RefID     string           `json:"refId,omitempty"`
	Date      string           `json:"date"`
	Note      string           `json:"note,omitempty"`
	CreatedAt string           `json:"createdAt,omitempty"`
}

// FundSummary is the headline view of the fund's money.
// Balance = contributions + repayments - principal still out on active loans.
type FundSummary struct {
	TotalContributions  int64 `json:"totalContributions"`
	TotalRepayments     int64 `json:"totalRepayments"`
	ActiveLoanPrincipal int64 `json:"activeLoanPrincipal"`
	Balance             int64 `json:"balance"`
}

// FundReport is the members roll-up: total deposits held, total outstanding
// loan balances, and the lending ceiling derived from them.
type FundReport struct {
	TotalDeposits     int64 `json:"totalDeposits"`
	TotalLoanBalances int64 `json:"totalLoanBalances"`
	LendingCeiling    int64 `json:"lendingCeiling"`
	MemberCount       int   `json:"memberCount"`
}

// BotInfo is the Telegram bot connectivity check result.
type BotInfo struct {
	Connected bool   `json:"connected"`
	Username  string `json:"username,omitempty"`
	Message   string `json:"message"`
}

// LedgerMetrics is the operational metrics snapshot for the admin dashboard.
type LedgerMetrics struct {
	PaymentsPosted      int64   `json:"paymentsPosted"`
	ContributionsPosted int64   `json:"contributionsPosted"`
	RepaymentsPosted    int64   `json:"repaymentsPosted"`
	WithdrawalsPosted   int64   `json:"withdrawalsPosted"`
	StoreErrors         int64   `json:"storeErrors"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}
