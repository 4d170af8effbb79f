package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/seedvault/internal/auth"
	"github.com/shandysiswandi/seedvault/internal/pkg/ratelimit"
	"github.com/shandysiswandi/seedvault/internal/vault"
)

// defaults covers every key the service cannot start without.
var defaults = map[string]any{
	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        15,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       30,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.shutdown_timeout_seconds":         10,
	"instrument.service_name":                     "seedvault",
	"kvstore.driver":                              "memory",
	"session.ttl_days":                            30,
	"session.refresh_threshold_days":              7,
	"session.cookie_secure":                       true,
	"storage.driver":                              "none",
	"messaging.driver":                            "none",
	"backup.retention":                            7,
	"backup.attempts":                             3,
}

func (a *App) initModules() {
	authMiddleware, err := auth.New(auth.Dependency{
		Credential:  a.credential,
		Session:     a.session,
		Limiter:     a.limiter,
		Codec:       a.codec,
		Messaging:   a.messaging,
		Mail:        a.mail,
		Goroutine:   a.goroutine,
		Router:      a.router,
		Config:      a.config,
		Instrument:  a.ins,
		Clock:       a.clock,
		UUID:        a.uuid,
		Validator:   a.validator,
		LoginPolicy: a.policy(ratelimit.PolicyLogin),
	})
	if err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}

	if err := vault.New(vault.Dependency{
		KV:         a.kv,
		Codec:      a.codec,
		Storage:    a.storage,
		Limiter:    a.limiter,
		Auth:       authMiddleware,
		Router:     a.router,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Snowflake:  a.uid,
		Validator:  a.validator,
		APIPolicy:  a.policy(ratelimit.PolicyAPI),
		BulkPolicy: a.policy(ratelimit.PolicyBulk),
	}); err != nil {
		slog.Error("failed to init module vault", "error", err)
		os.Exit(1)
	}
}
