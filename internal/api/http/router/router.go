package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/serviceflow_backend/config"
	"github.com/Alijeyrad/serviceflow_backend/internal/api/http/handler"
	"github.com/Alijeyrad/serviceflow_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/client"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/employee"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/expense"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/job"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/recurring"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/report"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/schedule"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
	"github.com/Alijeyrad/serviceflow_backend/pkg/redis"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg          *config.Config
	PasetoMgr    *pasetotoken.Manager
	Auth         authorize.IAuthorization `optional:"true"`
	Sessions     *redis.SessionStore      `optional:"true"`
	RecurringSvc recurring.Service
	ScheduleSvc  schedule.Service
	JobSvc       job.Service
	ClientSvc    client.Service
	EmployeeSvc  employee.Service
	ExpenseSvc   expense.Service
	ReportSvc    report.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	var sessions middleware.SessionChecker
	if r.p.Sessions != nil {
		sessions = r.p.Sessions
	}
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, sessions)

	var auth authorize.IAuthorization
	if r.p.Cfg.Authorization.Enabled {
		auth = r.p.Auth
	}
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(auth, res, act)
	}

	// 3. Initialize Handlers
	recurringH := handler.NewRecurringHandler(r.p.RecurringSvc)
	scheduleH := handler.NewScheduleHandler(r.p.ScheduleSvc)
	jobH := handler.NewJobHandler(r.p.JobSvc, r.p.Cfg.Server.BusinessName)
	clientH := handler.NewClientHandler(r.p.ClientSvc)
	employeeH := handler.NewEmployeeHandler(r.p.EmployeeSvc)
	expenseH := handler.NewExpenseHandler(r.p.ExpenseSvc)
	reportH := handler.NewReportHandler(r.p.ReportSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerRecurringRoutes(api, recurringH, authRequired, requirePerm)
	r.registerScheduleRoutes(api, scheduleH, authRequired, requirePerm)
	r.registerJobRoutes(api, jobH, authRequired, requirePerm)
	r.registerClientRoutes(api, clientH, authRequired, requirePerm)
	r.registerEmployeeRoutes(api, employeeH, authRequired, requirePerm)
	r.registerExpenseRoutes(api, expenseH, authRequired, requirePerm)
	r.registerReportRoutes(api, reportH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
