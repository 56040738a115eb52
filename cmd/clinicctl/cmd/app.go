package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.pilab.hu/clinic/cache"
	"go.pilab.hu/clinic/cache/redis"
	"go.pilab.hu/clinic/client"
	"go.pilab.hu/clinic/config"
	"go.pilab.hu/clinic/guard"
	"go.pilab.hu/clinic/internal/audit"
	"go.pilab.hu/clinic/internal/metrics"
	"go.pilab.hu/clinic/log"
	"go.pilab.hu/clinic/screens"
	"go.pilab.hu/clinic/session"
	"go.pilab.hu/clinic/tracing"
)

// app holds what the commands share. The session side is opened lazily so
// the context commands work without a reachable backend.
type app struct {
	cfg      *config.Manager
	settings config.Settings
	logger   log.Logger
	metrics  *metrics.Metrics
	tp       *sdktrace.TracerProvider
	audit    *audit.Logger
	auditOut *os.File

	client  *client.Client
	redis   *goredis.Client
	store   *session.Store
	guard   *guard.Guard
	screens *screens.Screens

	closed bool
}

func newApp(cmd *cobra.Command, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		settings: settings,
		logger:   log.New(log.Options{Level: settings.LogLevel, Format: settings.LogFormat, Out: os.Stderr}),
		metrics:  metrics.New(),
	}

	// Spans are always recorded so log lines carry trace IDs; --trace prints them.
	a.tp, err = tracing.InitTracerProvider(tracing.Options{
		ServiceName: config.AppName,
		Export:      settings.Trace,
		Out:         os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return a, nil
}

// open connects the session store, restores the stored session and builds
// the guard and screens.
func (a *app) open(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}

	current, err := a.cfg.CurrentContext()
	if err != nil {
		return err
	}
	endpoint := current.ServerEndpoint
	if a.settings.Server != "" {
		endpoint = a.settings.Server
	}

	a.client, err = client.New(endpoint,
		client.WithTimeout(a.settings.Timeout),
		client.WithLogger(a.logger.With(map[string]interface{}{"component": "client"})),
		client.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}

	storage, err := a.storage(current)
	if err != nil {
		return err
	}

	if a.settings.AuditLog != "" {
		a.auditOut, err = os.OpenFile(a.settings.AuditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		a.audit = audit.New(a.auditOut)
	}

	a.store = session.NewStore(a.client, storage,
		session.WithLogger(a.logger),
		session.WithMetrics(a.metrics),
		session.WithAudit(a.audit),
	)
	a.store.Initialize(cmd.Context())

	a.guard = guard.New(a.store, guard.WithLogger(a.logger), guard.WithMetrics(a.metrics))
	a.screens = screens.New(a.client, cmd.OutOrStdout(),
		screens.WithLogger(a.logger),
		screens.WithFormat(a.settings.Output),
		screens.WithConfirm(confirm),
		screens.WithAudit(a.audit, a.store),
	)
	return nil
}

func (a *app) storage(current *config.Context) (session.Storage, error) {
	switch a.settings.SessionBackend {
	case config.BackendRedis:
		a.redis = goredis.NewClient(&goredis.Options{Addr: a.settings.RedisAddr})
		return redis.NewStorage(a.redis, a.settings.RedisPrefix+":"+current.Name), nil
	case config.BackendMemory:
		return cache.NewMemoryStorage(), nil
	default:
		return a.cfg.SessionStorage()
	}
}

func (a *app) close(ctx context.Context) error {
	if a == nil || a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.settings.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.settings.MetricsTextfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.auditOut != nil {
		if err := a.auditOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audit log: %w", err))
		}
	}
	if a.tp != nil {
		// The command context may be cancelled already.
		if err := a.tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("shut down tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
