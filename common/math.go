package common

// CheckAmount panics if amount is negative.
func CheckAmount(amount int) {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
}

// Sub returns a-b and panics with ErrInsufficientFunds if the result is
// negative. Balances are never allowed to go below zero.
func Sub(a, b int) int {
	if a < b {
		panic(ErrInsufficientFunds)
	}
	return a - b
}

// Min returns the smaller of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
