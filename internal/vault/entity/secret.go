package entity

import (
	"strings"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/otp"
)

// Secret is one stored 2FA seed. The seed is kept as unpadded upper-case
// base32.
type Secret struct {
	ID        int64     `json:"id"`
	Issuer    string    `json:"issuer"`
	Account   string    `json:"account"`
	Seed      string    `json:"seed"`
	Type      string    `json:"type"`
	Algorithm string    `json:"algorithm"`
	Digits    int       `json:"digits"`
	Period    uint      `json:"period,omitempty"`
	Counter   uint64    `json:"counter,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the OTP parameters of s.
func (s Secret) Key() otp.Key {
	return otp.Key{
		Type:      s.Type,
		Issuer:    s.Issuer,
		Account:   s.Account,
		Secret:    s.Seed,
		Algorithm: s.Algorithm,
		Digits:    s.Digits,
		Period:    s.Period,
		Counter:   s.Counter,
	}
}

// SameSeed reports whether s and o describe the same account and seed.
func (s Secret) SameSeed(o Secret) bool {
	return strings.EqualFold(s.Issuer, o.Issuer) &&
		strings.EqualFold(s.Account, o.Account) &&
		s.Seed == o.Seed
}

// Matches reports whether issuer or account contains term, ignoring case.
func (s Secret) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Issuer), term) ||
		strings.Contains(strings.ToLower(s.Account), term)
}

// FromKey builds a Secret from a normalized key.
func FromKey(id int64, k otp.Key, now time.Time) Secret {
	return Secret{
		ID:        id,
		Issuer:    strings.TrimSpace(k.Issuer),
		Account:   strings.TrimSpace(k.Account),
		Seed:      k.Secret,
		Type:      k.Type,
		Algorithm: k.Algorithm,
		Digits:    k.Digits,
		Period:    k.Period,
		Counter:   k.Counter,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
