package domain

// HasActiveLoan reports whether any of the member's loans is still open.
// Legacy rows without a status count as active.
func HasActiveLoan(loans []Loan, memberID string) bool {
	for i := range loans {
		if loans[i].MemberID == memberID && loans[i].IsActive() {
			return true
		}
	}
	return false
}

// ActiveLoan returns the member's first open loan, or nil.
func ActiveLoan(loans []Loan, memberID string) *Loan {
	for i := range loans {
		if loans[i].MemberID == memberID && loans[i].IsActive() {
			return &loans[i]
		}
	}
	return nil
}

// LendingCeiling is the maximum amount available for new loans:
// total deposits held minus total outstanding loan balances, floored at zero.
func LendingCeiling(members []Member) int64 {
	var deposits, balances int64
	for i := range members {
		deposits += members[i].Deposit
		balances += members[i].LoanBalance
	}
	ceiling := deposits - balances
	if ceiling < 0 {
		ceiling = 0
	}
	return ceiling
}
