package domain

// PaymentType is the ledger effect of a payment record.
type PaymentType string

const (
	// PaymentContribution increases the member's deposit.
	PaymentContribution PaymentType = "contribution"
	// PaymentRepayment decreases the member's loan balance.
	PaymentRepayment PaymentType = "repayment"
)

// PaymentIntent is what the operator selected when entering a payment.
// It is classified into one or two typed payment legs.
type PaymentIntent string

const (
	IntentContribution PaymentIntent = "contribution"
	IntentRepayment    PaymentIntent = "repayment"
	// IntentContributionRepayment is the combined "deposit / monthly
	// installment" entry: one fixed installment plus the rest as deposit.
	IntentContributionRepayment PaymentIntent = "contribution_repayment"
)

// Payment is a posted ledger record.
type Payment struct {
	ID               string      `json:"id"`
	MemberID         string      `json:"memberId"`
	Amount           int64       `json:"amount"`
	Date             string      `json:"date"`
	Type             PaymentType `json:"type"`
	Note             string      `json:"note,omitempty"`
	ReceiptImagePath string      `json:"receiptImagePath,omitempty"`
	CreatedAt        string      `json:"createdAt,omitempty"`
}

// PaymentLeg is one typed slice of a classified payment, before it becomes a
// Payment record.
type PaymentLeg struct {
	Type   PaymentType `json:"type"`
	Amount int64       `json:"amount"`
	Note   string      `json:"note"`
}

// Decision is the outcome of classifying a payment entry. Legs are the
// records to post, in posting order. RequiresConfirmation marks splits the
// operator must approve before anything is written; Warning is non-blocking
// and only shown to the operator.
type Decision struct {
	Legs                 []PaymentLeg `json:"legs"`
	RequiresConfirmation bool         `json:"requiresConfirmation"`
	Warning              string       `json:"warning,omitempty"`
}

// RepaymentTotal sums the repayment legs.
func (d *Decision) RepaymentTotal() int64 {
	var total int64
	for _, leg := range d.Legs {
		if leg.Type == PaymentRepayment {
			total += leg.Amount
		}
	}
	return total
}

// ContributionTotal sums the contribution legs.
func (d *Decision) ContributionTotal() int64 {
	var total int64
	for _, leg := range d.Legs {
		if leg.Type == PaymentContribution {
			total += leg.Amount
		}
	}
	return total
}

// ReceiptStatus is the review state of a Telegram receipt submission.
type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "pending"
	ReceiptApproved ReceiptStatus = "approved"
	ReceiptRejected ReceiptStatus = "rejected"
)

// ReceiptSubmission is a payment receipt photo sent by a member through the
// Telegram bot, waiting for admin review. The admin supplies amount, date and
// intent at approval time; the image itself stays on the bot side.
type ReceiptSubmission struct {
	ID         string        `json:"id"`
	MemberID   string        `json:"memberId"`
	MemberName string        `json:"memberName"`
	ImagePath  string        `json:"imagePath"`
	Status     ReceiptStatus `json:"status"`
	Note       string        `json:"note,omitempty"`
	CreatedAt  string        `json:"createdAt"`
	ApprovedAt string        `json:"approvedAt,omitempty"`
}
