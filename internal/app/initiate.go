package app

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/rs/cors"
	"github.com/segmentio/kafka-go"
	"github.com/shandysiswandi/seedvault/internal/pkg/clock"
	"github.com/shandysiswandi/seedvault/internal/pkg/config"
	"github.com/shandysiswandi/seedvault/internal/pkg/credential"
	"github.com/shandysiswandi/seedvault/internal/pkg/cryptor"
	"github.com/shandysiswandi/seedvault/internal/pkg/envelope"
	"github.com/shandysiswandi/seedvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedvault/internal/pkg/hash"
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
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaults), config.WithEnv())
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) initKVStore() {
	driver := a.config.GetString("kvstore.driver")
	store, err := kvstore.NewFromDriver(a.ctx, driver, kvstore.FactoryOptions{
		Redis: kvstore.RedisOptions{
			URL:         a.config.GetString("kvstore.redis.url"),
			PingTimeout: a.config.GetSecond("kvstore.redis.ping_timeout_seconds"),
		},
		Postgres: kvstore.PostgresOptions{
			URL:             a.config.GetString("kvstore.postgres.url"),
			Table:           a.config.GetString("kvstore.postgres.table"),
			MaxConns:        a.config.GetInt32("kvstore.postgres.max_conns"),
			MinConns:        a.config.GetInt32("kvstore.postgres.min_conns"),
			MaxConnLifetime: a.config.GetSecond("kvstore.postgres.max_conn_lifetime_seconds"),
			MaxConnIdleTime: a.config.GetSecond("kvstore.postgres.max_conn_idle_seconds"),
			PingTimeout:     a.config.GetSecond("kvstore.postgres.ping_timeout_seconds"),
		},
		Clock: a.clock,
	})
	if err != nil {
		slog.Error("failed to init kv store", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.kv = store
}

func (a *App) initSecurity() {
	codec, err := envelope.NewCodec(cryptor.NewAESGCM(), a.config.GetString("vault.master_key"))
	if err != nil {
		slog.Error("failed to init envelope codec", "error", err)
		os.Exit(1)
	}
	a.codec = codec

	a.credential = credential.NewManager(a.kv, hash.NewPBKDF2(a.config.GetInt("credential.pbkdf2_iterations")))

	a.session = jwt.New(jwt.Config{
		Issuer:           a.config.GetString("session.issuer"),
		TTL:              a.config.GetDay("session.ttl_days"),
		RefreshThreshold: a.config.GetDay("session.refresh_threshold_days"),
		CookieName:       a.config.GetString("session.cookie_name"),
		CookieSecure:     a.config.GetBool("session.cookie_secure"),
		Clock:            a.clock,
		UUID:             a.uuid,
	})

	a.limiter = ratelimit.New(a.kv, a.clock)
}

// policy reads ratelimit.<name>.* and falls back to def for unset values.
func (a *App) policy(def ratelimit.Policy) ratelimit.Policy {
	p := def
	if n := a.config.GetInt("ratelimit." + def.Name + ".max_attempts"); n > 0 {
		p.MaxAttempts = n
	}
	if w := a.config.GetSecond("ratelimit." + def.Name + ".window_seconds"); w > 0 {
		p.Window = w
	}
	return p
}

func (a *App) initMail() {
	if strings.TrimSpace(a.config.GetString("mail.host")) == "" {
		slog.Warn("mail host is not configured, alert mails are discarded")
		a.mail = mail.Discard{}
		return
	}

	mail, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = mail
}

func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))

	var gcsClient *gcs.Client
	if driver == storage.DriverGCS {
		var gcsOptions []option.ClientOption
		if v := a.config.GetBinary("storage.gcs.credentials_json"); len(v) > 0 {
			creds, err := google.CredentialsFromJSON(a.ctx, v, gcs.ScopeReadWrite)
			if err != nil {
				slog.Error("failed to parse gcs credentials json", "error", err)
				os.Exit(1)
			}
			gcsOptions = append(gcsOptions, option.WithCredentials(creds))
		}
		if v := strings.TrimSpace(a.config.GetString("storage.gcs.endpoint")); v != "" {
			gcsOptions = append(gcsOptions, option.WithEndpoint(v), option.WithoutAuthentication())
		}
		if len(gcsOptions) > 0 {
			client, err := gcs.NewClient(a.ctx, gcsOptions...)
			if err != nil {
				slog.Error("failed to init gcs client", "error", err)
				os.Exit(1)
			}
			gcsClient = client
		}
	}

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		Bucket: strings.TrimSpace(a.config.GetString("storage.bucket")),
		S3: storage.S3Options{
			Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			Client:          gcsClient,
			CredentialsFile: strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")),
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.storage = stg
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	var kafkaTransport kafka.RoundTripper
	if a.config.GetBool("messaging.kafka.tls") {
		kafkaTransport = &kafka.Transport{TLS: &tls.Config{MinVersion: tls.VersionTLS12}}
	}

	var pubsubOptions []option.ClientOption
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.credentials_file")); v != "" {
		pubsubOptions = append(pubsubOptions, option.WithCredentialsFile(v))
	}
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		pubsubOptions = append(pubsubOptions, option.WithEndpoint(v), option.WithoutAuthentication())
	}

	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				if v := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); v > 0 {
					cfg.DialTimeout = v
				}
				if v := a.config.GetSecond("messaging.nsq.write_timeout_seconds"); v > 0 {
					cfg.WriteTimeout = v
				}
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:   a.config.GetArray("messaging.kafka.brokers"),
			Transport: kafkaTransport,
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("instrument.service_name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: pubsubOptions,
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			router.HeaderSessionToken,
			router.HeaderRequestID,
			"Retry-After",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				return a.storage.Close()
			},
		},
		{
			name: "KVStore",
			fn: func(context.Context) error {
				return a.kv.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
