package domain

import "github.com/Mohamad548/bilalhabashi/internal/shamsi"

// InstallmentAmount is the fixed monthly installment for a loan:
// floor(principal / months), with the term clamped to at least one month.
func InstallmentAmount(principal int64, dueMonths int) int64 {
	if dueMonths < 1 {
		dueMonths = 1
	}
	return principal / int64(dueMonths)
}

// Installment is the monthly installment derived from a loan row.
func (l *Loan) Installment() int64 {
	return InstallmentAmount(l.Amount, l.DueMonths)
}

// DueDates returns the due date for each installment month 1..dueMonths,
// using Shamsi month arithmetic with the day capped at 30.
func DueDates(disbursementDate string, dueMonths int) []string {
	if dueMonths < 1 {
		dueMonths = 1
	}
	dates := make([]string, 0, dueMonths)
	for k := 1; k <= dueMonths; k++ {
		dates = append(dates, shamsi.AddMonths(disbursementDate, k))
	}
	return dates
}

// IsMonthPaid reports whether installment month monthIndex (1-based) is
// covered. Paid months are a watermark over cumulative repayments: month k is
// paid once total repayments reach k installments, regardless of which
// payment rows covered it.
func IsMonthPaid(monthIndex int, totalRepaid, installment int64) bool {
	return totalRepaid >= int64(monthIndex)*installment
}

// BuildSchedule assembles the installment schedule for a loan from its
// cumulative repayment total.
func BuildSchedule(loan *Loan, totalRepaid int64) *LoanSchedule {
	installment := loan.Installment()
	dates := DueDates(loan.Date, loan.DueMonths)

	months := make([]ScheduleMonth, 0, len(dates))
	for i, due := range dates {
		months = append(months, ScheduleMonth{
			MonthIndex: i + 1,
			DueDate:    due,
			Amount:     installment,
			Paid:       IsMonthPaid(i+1, totalRepaid, installment),
		})
	}

	remaining := loan.Amount - totalRepaid
	if remaining < 0 {
		remaining = 0
	}

	return &LoanSchedule{
		LoanID:      loan.ID,
		MemberID:    loan.MemberID,
		Installment: installment,
		TotalRepaid: totalRepaid,
		Remaining:   remaining,
		Months:      months,
	}
}
