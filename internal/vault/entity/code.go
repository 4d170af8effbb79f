package entity

// Code is the current one-time password of a secret.
type Code struct {
	Code string `json:"code"`
	// Remaining is zero for HOTP secrets.
	Remaining int    `json:"remaining"`
	Counter   uint64 `json:"counter,omitempty"`
}
