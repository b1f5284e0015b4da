package domain

import (
	"fmt"

	"github.com/Mohamad548/bilalhabashi/internal/shamsi"
)

// Operator-facing messages, shown verbatim in the admin UI.
const (
	msgPickCombinedType   = "باید نوع را «سپرده / قسط ماهانه» انتخاب کنید."
	msgUnsettledLoan      = "این شخص وام تسویه‌نشده دارد. نوع را عوض کنید."
	msgNoLoanForRepayment = "نمی‌توانید این نوع را انتخاب کنید؛ این شخص هیچ وام ثبت‌شده‌ای ندارد."
	msgNoLoanForCombined  = "این شخص هیچ وام ثبت‌شده‌ای ندارد."
	msgBelowInstallment   = "این روش را نمی‌توانید انتخاب کنید؛ مبلغ کمتر از قسط ماهانه است."

	noteInstallment        = "قسط ماهانه"
	noteInstallmentPrefix  = "قسط"
	noteDeposit            = "سپرده"
	noteDepositPrefix      = "سپرده"
	noteRepayment          = "بازپرداخت"
	noteRepaymentSurplus   = "بازپرداخت وام (مازاد به سپرده)"
	noteRepaymentPrefix    = "بازپرداخت"
	noteSurplusToDeposit   = "مازاد وام به سپرده"
	noteWithdrawDeductLoan = "برداشت از سپرده — کسر از وام"
)

// ClassifyInput is the member state a payment entry is judged against.
// Installment and LoanBalance refer to the member's single active loan and
// are ignored when HasActiveLoan is false.
type ClassifyInput struct {
	Intent        PaymentIntent
	Amount        int64
	Note          string
	HasActiveLoan bool
	Installment   int64
	LoanBalance   int64
}

// Classify turns an operator payment entry into typed ledger legs. It is a
// pure decision function: it validates the intent against the member's loan
// state, splits over-installment amounts, and composes the canonical Persian
// record notes. Same input always yields the same Decision.
//
// The two split rules are intentionally different:
//   - repayment intent over the installment caps the repayment leg at the
//     remaining loan balance and pushes the rest to deposit;
//   - the combined intent posts exactly one fixed installment as repayment
//     and the rest as deposit, regardless of the remaining balance.
func Classify(in ClassifyInput) (*Decision, error) {
	if in.Amount <= 0 {
		return nil, &ErrValidation{Field: "amount", Message: "مبلغ را وارد کنید."}
	}

	switch in.Intent {
	case IntentContribution:
		if in.HasActiveLoan {
			if in.Installment > 0 && in.Amount > in.Installment {
				return nil, &ErrBusinessRule{Message: msgPickCombinedType}
			}
			return nil, &ErrBusinessRule{Message: msgUnsettledLoan}
		}
		return &Decision{
			Legs: []PaymentLeg{{Type: PaymentContribution, Amount: in.Amount, Note: in.Note}},
		}, nil

	case IntentRepayment:
		if !in.HasActiveLoan {
			return nil, &ErrBusinessRule{Message: msgNoLoanForRepayment}
		}
		if in.Installment > 0 && in.Amount > in.Installment {
			return overRepaySplit(in), nil
		}
		d := &Decision{
			Legs: []PaymentLeg{{Type: PaymentRepayment, Amount: in.Amount, Note: in.Note}},
		}
		if in.Installment > 0 && in.Amount < in.Installment {
			d.Warning = fmt.Sprintf("مبلغ قسط ماهانه این شخص %s بوده ولی %s ثبت می‌شود.",
				shamsi.FormatCurrency(in.Installment), shamsi.FormatCurrency(in.Amount))
		}
		return d, nil

	case IntentContributionRepayment:
		if !in.HasActiveLoan {
			return nil, &ErrBusinessRule{Message: msgNoLoanForCombined}
		}
		if in.Amount < in.Installment {
			return nil, &ErrBusinessRule{Message: msgBelowInstallment}
		}
		return combinedSplit(in), nil

	default:
		return nil, &ErrValidation{Field: "type", Message: fmt.Sprintf("unknown payment type: %s", in.Intent)}
	}
}

// overRepaySplit handles a repayment entry above the installment: the
// repayment leg is capped at the remaining loan balance, any surplus goes to
// the member's deposit.
func overRepaySplit(in ClassifyInput) *Decision {
	repayment := in.Amount
	if in.LoanBalance < repayment {
		repayment = in.LoanBalance
	}
	if repayment < 0 {
		repayment = 0
	}
	contribution := in.Amount - repayment

	legs := make([]PaymentLeg, 0, 2)
	if repayment > 0 {
		def := noteRepayment
		if contribution > 0 {
			def = noteRepaymentSurplus
		}
		legs = append(legs, PaymentLeg{
			Type:   PaymentRepayment,
			Amount: repayment,
			Note:   noteWithDefault(def, noteRepaymentPrefix, in.Note),
		})
	}
	if contribution > 0 {
		legs = append(legs, PaymentLeg{
			Type:   PaymentContribution,
			Amount: contribution,
			Note:   noteWithDefault(noteSurplusToDeposit, noteSurplusToDeposit, in.Note),
		})
	}

	return &Decision{Legs: legs, RequiresConfirmation: true}
}

// combinedSplit handles the combined entry: a fixed installment plus the rest
// as deposit. A zero remainder leaves just the installment leg.
func combinedSplit(in ClassifyInput) *Decision {
	contribution := in.Amount - in.Installment

	legs := []PaymentLeg{{
		Type:   PaymentRepayment,
		Amount: in.Installment,
		Note:   noteWithDefault(noteInstallment, noteInstallmentPrefix, in.Note),
	}}
	if contribution > 0 {
		legs = append(legs, PaymentLeg{
			Type:   PaymentContribution,
			Amount: contribution,
			Note:   noteWithDefault(noteDeposit, noteDepositPrefix, in.Note),
		})
	}

	return &Decision{Legs: legs, RequiresConfirmation: true}
}

func noteWith(prefix, note string) string {
	return prefix + " — " + note
}

// noteWithDefault returns "<prefix> — <note>" when the operator wrote a note,
// otherwise the bare default label.
func noteWithDefault(def, prefix, note string) string {
	if note == "" {
		return def
	}
	return noteWith(prefix, note)
}
