package otp

import (
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// Key types.
const (
	TypeTOTP = "totp"
	TypeHOTP = "hotp"
)

const (
	// DefaultPeriod is the TOTP step in seconds.
	DefaultPeriod = 30
	// DefaultDigits is the code length.
	DefaultDigits = 6
	// DefaultAlgorithm is the HMAC hash.
	DefaultAlgorithm = "SHA1"
)

var (
	// ErrInvalidSecret is returned when a seed is not valid base32.
	ErrInvalidSecret = errors.New("otp: secret is not valid base32")
	// ErrInvalidType is returned for key types other than totp and hotp.
	ErrInvalidType = errors.New("otp: unsupported key type")
	// ErrInvalidAlgorithm is returned for unsupported hash names.
	ErrInvalidAlgorithm = errors.New("otp: unsupported algorithm")
	// ErrInvalidDigits is returned for code lengths other than 6 and 8.
	ErrInvalidDigits = errors.New("otp: digits must be 6 or 8")
)

var noPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// Key describes one OTP seed.
type Key struct {
	Type      string
	Issuer    string
	Account   string
	Secret    string
	Algorithm string
	Digits    int
	Period    uint
	Counter   uint64
}

// Normalize fills defaults and canonicalizes the secret and algorithm.
func (k Key) Normalize() (Key, error) {
	k.Type = strings.ToLower(strings.TrimSpace(k.Type))
	if k.Type == "" {
		k.Type = TypeTOTP
	}
	if k.Type != TypeTOTP && k.Type != TypeHOTP {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidType, k.Type)
	}

	secret, err := NormalizeSecret(k.Secret)
	if err != nil {
		return Key{}, err
	}
	k.Secret = secret

	if k.Algorithm == "" {
		k.Algorithm = DefaultAlgorithm
	}
	alg, err := ParseAlgorithm(k.Algorithm)
	if err != nil {
		return Key{}, err
	}
	k.Algorithm = alg.String()

	if k.Digits == 0 {
		k.Digits = DefaultDigits
	}
	if k.Digits != 6 && k.Digits != 8 {
		return Key{}, ErrInvalidDigits
	}

	if k.Type == TypeTOTP && k.Period == 0 {
		k.Period = DefaultPeriod
	}

	return k, nil
}

// NormalizeSecret uppercases secret, strips separators and padding and
// checks that the result decodes as base32.
func NormalizeSecret(secret string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '=':
			return -1
		}
		return r
	}, strings.ToUpper(secret))

	if s == "" {
		return "", ErrInvalidSecret
	}
	if _, err := noPad.DecodeString(s); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}

	return s, nil
}

// Base64ToBase32 converts a standard base64 seed to unpadded base32.
func Base64ToBase32(secret string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, secret)

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	if len(raw) == 0 {
		return "", ErrInvalidSecret
	}

	return noPad.EncodeToString(raw), nil
}

// ParseAlgorithm maps a hash name to the pquerna algorithm.
func ParseAlgorithm(name string) (otp.Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	default:
		return otp.AlgorithmSHA1, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, name)
	}
}

// Code is a generated one-time password.
type Code struct {
	Code string
	// Remaining is the number of seconds the TOTP code stays current.
	// It is zero for HOTP.
	Remaining int
}

// Generate computes the code of key at the given time. HOTP keys use their
// stored counter and ignore at.
func Generate(key Key, at time.Time) (Code, error) {
	key, err := key.Normalize()
	if err != nil {
		return Code{}, err
	}

	alg, _ := ParseAlgorithm(key.Algorithm)
	digits := otp.Digits(key.Digits)

	if key.Type == TypeHOTP {
		code, err := hotp.GenerateCodeCustom(key.Secret, key.Counter, hotp.ValidateOpts{
			Digits:    digits,
			Algorithm: alg,
		})
		if err != nil {
			return Code{}, err
		}
		return Code{Code: code}, nil
	}

	code, err := totp.GenerateCodeCustom(key.Secret, at, totp.ValidateOpts{
		Period:    key.Period,
		Skew:      0,
		Digits:    digits,
		Algorithm: alg,
	})
	if err != nil {
		return Code{}, err
	}

	period := int64(key.Period)
	return Code{Code: code, Remaining: int(period - at.Unix()%period)}, nil
}
