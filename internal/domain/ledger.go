package domain

import (
	"strconv"

	"github.com/Mohamad548/bilalhabashi/internal/shamsi"
)

// The ledger is pure: every function takes a member snapshot and returns the
// updated snapshot plus the payment records to write. Persistence and
// ID/timestamp stamping happen in the service layer. Deposit and loan
// balance never go below zero.

// ApplyLeg applies one classified payment leg to a member snapshot and
// returns the updated snapshot plus the payment record for that leg.
func ApplyLeg(m Member, leg PaymentLeg, date string) (Member, Payment) {
	switch leg.Type {
	case PaymentRepayment:
		m.LoanBalance -= leg.Amount
		if m.LoanBalance < 0 {
			m.LoanBalance = 0
		}
	case PaymentContribution:
		m.Deposit += leg.Amount
	}

	return m, Payment{
		MemberID: m.ID,
		Amount:   leg.Amount,
		Date:     date,
		Type:     leg.Type,
		Note:     leg.Note,
	}
}

// ApplyDecision applies every leg of a classified decision in order.
func ApplyDecision(m Member, d *Decision, date string) (Member, []Payment) {
	payments := make([]Payment, 0, len(d.Legs))
	for _, leg := range d.Legs {
		var p Payment
		m, p = ApplyLeg(m, leg, date)
		payments = append(payments, p)
	}
	return m, payments
}

// WithdrawalMode selects how a deposit withdrawal is settled.
type WithdrawalMode string

const (
	// WithdrawDeductLoan nets the withdrawal against the member's loan:
	// deposit and loan balance both decrease, recorded as a repayment.
	WithdrawDeductLoan WithdrawalMode = "deduct_loan"
	// WithdrawTransfer pays the amount out to the member's card: only the
	// deposit decreases, recorded in the fund log, no payment record.
	WithdrawTransfer WithdrawalMode = "transfer"
)

// WithdrawalResult is the outcome of applying a withdrawal: the updated
// snapshot plus at most one payment record (deduct_loan) or one fund log
// entry (transfer).
type WithdrawalResult struct {
	Member   Member
	Payment  *Payment
	LogEntry *FundLogEntry
}

// ApplyWithdrawal validates and applies a deposit withdrawal. Date is the
// posting date for the resulting record.
func ApplyWithdrawal(m Member, mode WithdrawalMode, amount int64, card, date string) (*WithdrawalResult, error) {
	switch mode {
	case WithdrawDeductLoan:
		if amount <= 0 {
			return nil, &ErrValidation{Field: "amount", Message: "مبلغ را وارد کنید."}
		}
		if amount > m.Deposit {
			return nil, &ErrBusinessRule{
				Message: "مبلغ نمی‌تواند بیشتر از موجودی سپرده (" + shamsi.FormatCurrency(m.Deposit) + ") باشد.",
			}
		}
		if amount > m.LoanBalance {
			return nil, &ErrBusinessRule{
				Message: "مبلغ نمی‌تواند بیشتر از مانده وام (" + shamsi.FormatCurrency(m.LoanBalance) + ") باشد.",
			}
		}
		m.Deposit -= amount
		m.LoanBalance -= amount
		return &WithdrawalResult{
			Member: m,
			Payment: &Payment{
				MemberID: m.ID,
				Amount:   amount,
				Date:     date,
				Type:     PaymentRepayment,
				Note:     noteWithdrawDeductLoan,
			},
		}, nil

	case WithdrawTransfer:
		if amount <= 0 {
			return nil, &ErrValidation{Field: "amount", Message: "مبلغ واریز را وارد کنید."}
		}
		if amount > m.Deposit {
			return nil, &ErrBusinessRule{
				Message: "مبلغ نمی‌تواند بیشتر از موجودی سپرده (" + shamsi.FormatCurrency(m.Deposit) + ") باشد.",
			}
		}
		if card == "" {
			return nil, &ErrValidation{Field: "card", Message: "شماره کارت واریزی را وارد کنید."}
		}
		m.Deposit -= amount
		return &WithdrawalResult{
			Member: m,
			LogEntry: &FundLogEntry{
				Type:     FundLogOut,
				Amount:   amount,
				MemberID: m.ID,
				RefType:  RefWithdrawalTransfer,
				Date:     date,
				Note:     "واریز به حساب - کارت: " + card + " - مبلغ: " + strconv.FormatInt(amount, 10),
			},
		}, nil

	default:
		return nil, &ErrValidation{Field: "mode", Message: "unknown withdrawal mode: " + string(mode)}
	}
}
