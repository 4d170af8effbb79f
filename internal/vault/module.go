package vault

import (
	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
	"github.com/shandysiswandi/seedvault/internal/pkg/storage"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
	"github.com/shandysiswandi/seedvault/internal/vault/inbound"
	"github.com/shandysiswandi/seedvault/internal/vault/outbound/blob"
	"github.com/shandysiswandi/seedvault/internal/vault/outbound/kv"
	"github.com/shandysiswandi/seedvault/internal/vault/usecase"
)

type Dependency struct {
	KV         kvstore.Store              `validate:"required"`
	Codec      *envelope.Codec            `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Limiter    *ratelimit.Limiter         `validate:"required"`
	Auth       router.Middleware          `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Snowflake  uid.NumberID               `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	APIPolicy  ratelimit.Policy
	BulkPolicy ratelimit.Policy
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	apiPolicy := dep.APIPolicy
	if apiPolicy.MaxAttempts <= 0 || apiPolicy.Window <= 0 {
		apiPolicy = ratelimit.PolicyAPI
	}
	bulkPolicy := dep.BulkPolicy
	if bulkPolicy.MaxAttempts <= 0 || bulkPolicy.Window <= 0 {
		bulkPolicy = ratelimit.PolicyBulk
	}

	uc := usecase.New(usecase.Dependency{
		RepoKV:     kv.New(dep.KV, dep.Codec, dep.Instrument),
		RepoBlob:   blob.New(dep.Storage, dep.Instrument, dep.Config.GetInt("backup.attempts")),
		Validator:  dep.Validator,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Snowflake:  dep.Snowflake,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Guards{
		Auth: dep.Auth,
		API:  dep.Router.RateLimit(dep.Limiter, apiPolicy),
		Bulk: dep.Router.RateLimit(dep.Limiter, bulkPolicy),
	})

	return nil
}
