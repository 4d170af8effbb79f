package auth

import (
	"github.com/shandysiswandi/seedvault/internal/auth/inbound"
	"github.com/shandysiswandi/seedvault/internal/auth/outbound/email"
	"github.com/shandysiswandi/seedvault/internal/auth/outbound/mq"
	"github.com/shandysiswandi/seedvault/internal/auth/usecase"
	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/credential"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
	"github.com/shandysiswandi/seedvault/internal/pkg/mail"
	"github.com/shandysiswandi/seedvault/internal/pkg/messaging"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
)

type Dependency struct {
	Credential  *credential.Manager        `validate:"required"`
	Session     *jwt.Service               `validate:"required"`
	Limiter     *ratelimit.Limiter         `validate:"required"`
	Codec       *envelope.Codec            `validate:"required"`
	Messaging   messaging.Publisher        `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	LoginPolicy ratelimit.Policy
}

// New registers the auth endpoints and returns the middleware that guards
// routes with the operator session.
func New(dep Dependency) (router.Middleware, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument, dep.UUID, dep.Config.GetString("messaging.topic"))
	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		Credential:    dep.Credential,
		Session:       dep.Session,
		Limiter:       dep.Limiter,
		Encryption:    dep.Codec,
		RepoMessaging: repoMsg,
		RepoMail:      repoMail,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
		LoginPolicy:   dep.LoginPolicy,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Session)

	return dep.Router.Authentication(uc, dep.Session), nil
}
