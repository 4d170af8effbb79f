package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
	"github.com/shandysiswandi/seedvault/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

type repoKV interface {
	Load(ctx context.Context) ([]entity.Secret, error)
	LoadRaw(ctx context.Context) (string, error)
	Decode(raw string) ([]entity.Secret, error)
	Save(ctx context.Context, secrets []entity.Secret) error
	Encrypted() bool
}

type repoBlob interface {
	Upload(ctx context.Context, key string, data []byte, meta map[string]string) (*entity.Backup, error)
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context) ([]entity.Backup, error)
	Delete(ctx context.Context, key string) error
}

// defaultRetention is how many backups are kept when none is configured.
const defaultRetention = 7

type Usecase struct {
	repoKV    repoKV
	repoBlob  repoBlob
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	snowflake uid.NumberID
	ins       instrument.Instrumentation

	// mu serializes read-modify-write cycles on the collection.
	mu sync.Mutex
}

type Dependency struct {
	RepoKV     repoKV
	RepoBlob   repoBlob
	Validator  validator.Validator
	Config     config.Config
	Clock      clock.Clocker
	Snowflake  uid.NumberID
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoKV:    dep.RepoKV,
		repoBlob:  dep.RepoBlob,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		snowflake: dep.Snowflake,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

func (s *Usecase) now() time.Time {
	return s.clock.Now().UTC()
}

func indexOf(secrets []entity.Secret, id int64) int {
	for i, sec := range secrets {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

// serverErr keeps classified errors and hides anything else behind an
// internal error.
func serverErr(err error) error {
	var ge *goerror.Error
	if errors.As(err, &ge) {
		return err
	}
	return goerror.NewServer(err)
}

// load reads the collection. Callers that modify it hold mu.
func (s *Usecase) load(ctx context.Context) ([]entity.Secret, error) {
	secrets, err := s.repoKV.Load(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load secrets", "error", err)
		return nil, serverErr(err)
	}
	return secrets, nil
}

func (s *Usecase) save(ctx context.Context, secrets []entity.Secret) error {
	if err := s.repoKV.Save(ctx, secrets); err != nil {
		slog.ErrorContext(ctx, "failed to save secrets", "count", len(secrets), "error", err)
		return serverErr(err)
	}
	return nil
}
