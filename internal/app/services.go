package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/serviceflow_backend/config"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/client"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/employee"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/expense"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/job"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/recurring"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/report"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/schedule"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
	"github.com/Alijeyrad/serviceflow_backend/pkg/email"
	"github.com/Alijeyrad/serviceflow_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideRecurringService,
		ProvideScheduleService,
		ProvideJobService,
		ProvideClientService,
		ProvideEmployeeService,
		ProvideExpenseService,
		ProvideReportService,
		ProvidePasetoManager,
	),
)

type RecurringParams struct {
	fx.In

	Store   *store.Store
	NC      *nats.Conn                        `optional:"true"`
	Metrics *observability.GenerationMetrics `optional:"true"`
}

func ProvideRecurringService(p RecurringParams) recurring.Service {
	var pub recurring.Publisher
	if p.NC != nil {
		pub = p.NC
	}
	return recurring.New(p.Store, pub, p.Metrics, slog.Default())
}

type ScheduleParams struct {
	fx.In

	Cfg     *config.Config
	Store   *store.Store
	Redis   *redis.Client                     `optional:"true"`
	Metrics *observability.GenerationMetrics `optional:"true"`
}

func ProvideScheduleService(p ScheduleParams) schedule.Service {
	var seen schedule.SeenSet
	if p.Cfg.Recurrence.ViewCache == "redis" && p.Redis != nil {
		seen = schedule.NewRedisSeenSet(p.Redis, sessionTTL(p.Cfg))
	}
	return schedule.New(p.Store, seen, p.Metrics, slog.Default())
}

// ProvideJobService leaves invoicing off unless email is enabled.
func ProvideJobService(st *store.Store, mail *email.Client, cfg *config.Config) job.Service {
	var sender job.InvoiceSender
	if cfg.Email.Enabled && mail != nil {
		sender = mail
	}
	return job.New(st, sender)
}

func ProvideClientService(st *store.Store) client.Service {
	return client.New(st)
}

func ProvideEmployeeService(st *store.Store) employee.Service {
	return employee.New(st)
}

func ProvideExpenseService(st *store.Store) expense.Service {
	return expense.New(st)
}

func ProvideReportService(st *store.Store) report.Service {
	return report.New(st)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
