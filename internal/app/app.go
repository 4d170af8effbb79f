package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/credential"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/jwt"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
	"github.com/shandysiswandi/seedvault/internal/pkg/mail"
	"github.com/shandysiswandi/seedvault/internal/pkg/messaging"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
	"github.com/shandysiswandi/seedvault/internal/pkg/router"
	"github.com/shandysiswandi/seedvault/internal/pkg/storage"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"github.com/shandysiswandi/seedvault/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID

	// security
	codec      *envelope.Codec
	credential *credential.Manager
	session    *jwt.Service
	limiter    *ratelimit.Limiter

	// resources
	kv        kvstore.Store
	mail      mail.Mail
	messaging messaging.Publisher
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initKVStore()
	app.initSecurity()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
