package jwt

import (
	"strings"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
)

// Service signs and verifies session tokens with HS256.
//
// The signing key is supplied per call so the credential hash is read from
// storage by the caller and never cached here.
type Service struct {
	issuer           string
	ttl              time.Duration
	refreshThreshold time.Duration
	cookieName       string
	cookieSecure     bool
	clock            clocker
	uuid             generator
}

// New constructs a Service, filling zero values with defaults.
func New(cfg Config) *Service {
	s := &Service{
		issuer:           cfg.Issuer,
		ttl:              cfg.TTL,
		refreshThreshold: cfg.RefreshThreshold,
		cookieName:       cfg.CookieName,
		cookieSecure:     cfg.CookieSecure,
		clock:            cfg.Clock,
		uuid:             cfg.UUID,
	}

	if s.issuer == "" {
		s.issuer = DefaultIssuer
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.refreshThreshold <= 0 {
		s.refreshThreshold = DefaultRefreshThreshold
	}
	if s.cookieName == "" {
		s.cookieName = DefaultCookieName
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.uuid == nil {
		s.uuid = uid.NewUUID()
	}

	return s
}

// TTL returns the default token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims with key. The registered claims are always overwritten:
// iat is now and exp is now+ttl. A non-positive ttl means the default.
func (s *Service) Issue(claims Claims, key []byte, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", ErrEmptySigningKey
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.clock.Now()
	claims.RegisteredClaims = libJWT.RegisteredClaims{
		ID:        s.uuid.Generate(),
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  libJWT.NewNumericDate(now),
		NotBefore: libJWT.NewNumericDate(now),
		ExpiresAt: libJWT.NewNumericDate(now.Add(ttl)),
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS256, claims).SignedString(key)
}

// Verify returns the claims of a well-formed, correctly signed, unexpired
// token. Any failure is reported as false, never as an error.
func (s *Service) Verify(token string, key []byte) (*Claims, bool) {
	if len(key) == 0 || strings.Count(token, ".") != 2 {
		return nil, false
	}

	var claims Claims
	parsed, err := libJWT.ParseWithClaims(token, &claims,
		func(*libJWT.Token) (any, error) { return key, nil },
		libJWT.WithIssuer(s.issuer),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS256.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	return &claims, true
}

// VerifyWithRefreshInfo verifies token and reports how long it remains valid
// and whether it is close enough to expiry to be re-issued.
func (s *Service) VerifyWithRefreshInfo(token string, key []byte) (*RefreshInfo, bool) {
	claims, ok := s.Verify(token, key)
	if !ok {
		return nil, false
	}

	remaining := claims.ExpiresAt.Sub(s.clock.Now())
	return &RefreshInfo{
		Claims:       claims,
		Remaining:    remaining,
		NeedsRefresh: remaining < s.refreshThreshold,
	}, true
}

// Refresh re-issues a currently valid token with a fresh lifetime. The
// original login time is carried forward. No password is required.
func (s *Service) Refresh(token string, key []byte) (string, error) {
	claims, ok := s.Verify(token, key)
	if !ok {
		return "", goerror.Wrap(goerror.KindAuthentication, "Session is invalid or expired", ErrInvalidToken)
	}

	loginAt := claims.LoginAt
	if loginAt == 0 && claims.IssuedAt != nil {
		loginAt = claims.IssuedAt.Unix()
	}

	return s.Issue(Claims{Reason: ReasonRefresh, LoginAt: loginAt}, key, s.ttl)
}
