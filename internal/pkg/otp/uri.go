package otp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const scheme = "otpauth"

// ErrInvalidURI is returned when a provisioning URI cannot be parsed.
var ErrInvalidURI = errors.New("otp: invalid otpauth uri")

// URI renders key as an otpauth:// provisioning URI.
func (k Key) URI() string {
	label := k.Account
	if k.Issuer != "" {
		label = k.Issuer + ":" + k.Account
	}

	q := url.Values{}
	q.Set("secret", k.Secret)
	if k.Issuer != "" {
		q.Set("issuer", k.Issuer)
	}
	q.Set("algorithm", k.Algorithm)
	q.Set("digits", strconv.Itoa(k.Digits))
	if k.Type == TypeHOTP {
		q.Set("counter", strconv.FormatUint(k.Counter, 10))
	} else {
		q.Set("period", strconv.FormatUint(uint64(k.Period), 10))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     k.Type,
		Path:     "/" + label,
		RawQuery: q.Encode(),
	}

	return u.String()
}

// ParseURI parses an otpauth:// provisioning URI into a normalized Key.
func ParseURI(raw string) (Key, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if u.Scheme != scheme {
		return Key{}, fmt.Errorf("%w: scheme %q", ErrInvalidURI, u.Scheme)
	}

	q := u.Query()
	key := Key{
		Type:      u.Host,
		Secret:    q.Get("secret"),
		Algorithm: q.Get("algorithm"),
		Issuer:    q.Get("issuer"),
	}

	label := strings.TrimPrefix(u.Path, "/")
	if issuer, account, ok := strings.Cut(label, ":"); ok {
		key.Account = strings.TrimSpace(account)
		if key.Issuer == "" {
			key.Issuer = strings.TrimSpace(issuer)
		}
	} else {
		key.Account = strings.TrimSpace(label)
	}

	if v := q.Get("digits"); v != "" {
		if key.Digits, err = strconv.Atoi(v); err != nil {
			return Key{}, fmt.Errorf("%w: digits: %w", ErrInvalidURI, err)
		}
	}
	if v := q.Get("period"); v != "" {
		p, err := strconv.ParseUint(v, 10, 32)
		if err != nil || p == 0 {
			return Key{}, fmt.Errorf("%w: period %q", ErrInvalidURI, v)
		}
		key.Period = uint(p)
	}
	if v := q.Get("counter"); v != "" {
		if key.Counter, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Key{}, fmt.Errorf("%w: counter: %w", ErrInvalidURI, err)
		}
	}

	return key.Normalize()
}
