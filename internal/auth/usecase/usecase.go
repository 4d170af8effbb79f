package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type credentialManager interface {
	SetCredential(ctx context.Context, password string) error
	VerifyCredential(ctx context.Context, password string) (bool, error)
	SigningKey(ctx context.Context) ([]byte, error)
	SetupCompleted(ctx context.Context) (bool, error)
	MarkSetupCompleted(ctx context.Context) error
}

type sessionService interface {
	Issue(claims jwt.Claims, key []byte, ttl time.Duration) (string, error)
	VerifyWithRefreshInfo(token string, key []byte) (*jwt.RefreshInfo, bool)
	Refresh(token string, key []byte) (string, error)
	TTL() time.Duration
}

type limiter interface {
	Check(ctx context.Context, key string, p ratelimit.Policy) ratelimit.Result
	Reset(ctx context.Context, key string) error
}

type encryptionStatus interface {
	Encrypted() bool
}

type repoMessaging interface {
	PublishSecurityEvent(ctx context.Context, ev entity.SecurityEvent) error
}

type repoMail interface {
	SendLockoutAlert(ctx context.Context, recipients []string, ev entity.SecurityEvent) error
}

type Usecase struct {
	credential  credentialManager
	session     sessionService
	limiter     limiter
	encryption  encryptionStatus
	repoMsg     repoMessaging
	repoMail    repoMail
	validator   validator.Validator
	cfg         config.Config
	clock       clock.Clocker
	ins         instrument.Instrumentation
	goroutine   *goroutine.Manager
	loginPolicy ratelimit.Policy
}

type Dependency struct {
	Credential    credentialManager
	Session       sessionService
	Limiter       limiter
	Encryption    encryptionStatus
	RepoMessaging repoMessaging
	RepoMail      repoMail
	Validator     validator.Validator
	Config        config.Config
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
	LoginPolicy   ratelimit.Policy
}

func New(dep Dependency) *Usecase {
	policy := dep.LoginPolicy
	if policy.MaxAttempts <= 0 || policy.Window <= 0 {
		policy = ratelimit.PolicyLogin
	}

	return &Usecase{
		credential:  dep.Credential,
		session:     dep.Session,
		limiter:     dep.Limiter,
		encryption:  dep.Encryption,
		repoMsg:     dep.RepoMessaging,
		repoMail:    dep.RepoMail,
		validator:   dep.Validator,
		cfg:         dep.Config,
		clock:       dep.Clock,
		ins:         dep.Instrument,
		goroutine:   dep.Goroutine,
		loginPolicy: policy,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// issue signs a new session token with the operator signing key.
func (s *Usecase) issue(key []byte, reason string, loginAt time.Time) (*entity.Session, error) {
	ttl := s.session.TTL()
	token, err := s.session.Issue(jwt.Claims{Reason: reason, LoginAt: loginAt.Unix()}, key, ttl)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		Token:     token,
		Reason:    reason,
		ExpiresAt: s.clock.Now().Add(ttl),
	}, nil
}

func (s *Usecase) publish(ctx context.Context, ev entity.SecurityEvent) {
	ev.OccurredAt = s.clock.Now()
	s.goroutine.Go(ctx, "publish "+ev.Type.String(), func(ctx context.Context) error {
		return s.repoMsg.PublishSecurityEvent(ctx, ev)
	})
}

func (s *Usecase) alertLockout(ctx context.Context, ev entity.SecurityEvent) {
	if !s.cfg.GetBool("alert.enabled") {
		return
	}

	recipients := s.cfg.GetArray("alert.recipients")
	if len(recipients) == 0 {
		return
	}

	s.goroutine.Go(ctx, "mail lockout alert", func(ctx context.Context) error {
		return s.repoMail.SendLockoutAlert(ctx, recipients, ev)
	})
}
