package credential

import "unicode"

// MinPasswordLength is the shortest password the policy accepts.
const MinPasswordLength = 8

// Policy violations reported by CheckPolicy.
const (
	ViolationLength = "must be at least 8 characters"
	ViolationUpper  = "must contain an uppercase letter"
	ViolationLower  = "must contain a lowercase letter"
	ViolationDigit  = "must contain a digit"
	ViolationSymbol = "must contain a symbol"
)

// CheckPolicy returns every rule the password breaks, in a stable order.
// An empty result means the password is acceptable.
func CheckPolicy(password string) []string {
	var upper, lower, digit, symbol bool
	n := 0
	for _, r := range password {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}

	var violations []string
	if n < MinPasswordLength {
		violations = append(violations, ViolationLength)
	}
	if !upper {
		violations = append(violations, ViolationUpper)
	}
	if !lower {
		violations = append(violations, ViolationLower)
	}
	if !digit {
		violations = append(violations, ViolationDigit)
	}
	if !symbol {
		violations = append(violations, ViolationSymbol)
	}
	return violations
}
