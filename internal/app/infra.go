package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/serviceflow_backend/config"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
	"github.com/Alijeyrad/serviceflow_backend/pkg/database"
	"github.com/Alijeyrad/serviceflow_backend/pkg/email"
	"github.com/Alijeyrad/serviceflow_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/serviceflow_backend/pkg/redis"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideSessionStore),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideGenerationMetrics),
	fx.Provide(ProvideNatsClient),
)

func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (*store.Store, error) {
	drv, err := database.NewDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	st := store.New(drv)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Database.Migrations.AutoMigrate {
				return nil
			}
			slog.Info("running schema migration", "driver", cfg.Database.Driver)
			return st.Migrate(ctx)
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return st.Close()
		},
	})
	return st, nil
}

// ProvideRedis returns nil when no address is configured. Sessions, the
// rate limiter and the schedule seen-set then fall back to process memory.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("redis disabled: sessions are not checked and caches stay in memory")
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideSessionStore(rdb *redis.Client, cfg *config.Config) *redispkg.SessionStore {
	if rdb == nil {
		return nil
	}
	return redispkg.NewSessionStore(rdb, sessionTTL(cfg))
}

func sessionTTL(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute
}

// ProvideAuthorization returns nil when RBAC is disabled.
func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	if !cfg.Authorization.Enabled {
		return nil, nil
	}
	auth, cleanup, err := NewAuthorization(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

// NewAuthorization builds the enforcer over the casbin database, wrapped in
// the audit logger when enabled.
func NewAuthorization(cfg *config.Config) (authorize.IAuthorization, authorize.CleanupFunc, error) {
	dbCfg := CasbinDatabase(cfg)
	enforcer, cleanup, err := authorize.NewEnforcer(authorize.EnforcerOptions{
		ModelPath: cfg.Authorization.CasbinModelPath,
		Driver:    database.FromCentralConfig(dbCfg).Driver,
		DSN:       database.NewDSN(dbCfg),
		Watch:     cfg.Authorization.PolicySyncEnabled,
	})
	if err != nil {
		return nil, nil, err
	}

	authCfg := authorize.FromCentralConfig(cfg.Authorization)
	auth, err := authorize.NewAuthorization(enforcer, authCfg)
	if err != nil {
		cleanup(context.Background())
		return nil, nil, err
	}
	if authCfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	return auth, cleanup, nil
}

// CasbinDatabase falls back to the main database when no separate policy
// database is configured.
func CasbinDatabase(cfg *config.Config) config.DatabaseConfig {
	c := cfg.CasbinDatabase
	if c.Driver == "" && c.DBName == "" && c.Path == "" {
		return cfg.Database
	}
	if c.Driver == "" {
		c.Driver = cfg.Database.Driver
	}
	return c
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

// ProvideNatsClient returns nil when no URL is configured.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(cfg.Observability.ServiceName),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideGenerationMetrics depends on the OTel provider so instruments bind
// to the configured meter provider rather than the no-op global.
func ProvideGenerationMetrics(_ *observability.Provider) *observability.GenerationMetrics {
	return observability.NewGenerationMetrics()
}
