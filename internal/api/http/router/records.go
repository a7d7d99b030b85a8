package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/api/http/handler"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
)

func (r *Router) registerClientRoutes(
	api fiber.Router,
	h *handler.ClientHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	clients := api.Group("/clients", authRequired)
	clients.Get("/", requirePerm(authorize.ResourceClient, authorize.ActionList), h.List)
	clients.Post("/", requirePerm(authorize.ResourceClient, authorize.ActionCreate), h.Create)
	clients.Get("/:id", requirePerm(authorize.ResourceClient, authorize.ActionRead), h.Get)
	clients.Put("/:id", requirePerm(authorize.ResourceClient, authorize.ActionUpdate), h.Update)
	clients.Delete("/:id", requirePerm(authorize.ResourceClient, authorize.ActionDelete), h.Delete)
}

func (r *Router) registerEmployeeRoutes(
	api fiber.Router,
	h *handler.EmployeeHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	employees := api.Group("/employees", authRequired)
	employees.Get("/", requirePerm(authorize.ResourceEmployee, authorize.ActionList), h.List)
	employees.Post("/", requirePerm(authorize.ResourceEmployee, authorize.ActionCreate), h.Create)
	employees.Put("/:id", requirePerm(authorize.ResourceEmployee, authorize.ActionUpdate), h.Update)
	employees.Delete("/:id", requirePerm(authorize.ResourceEmployee, authorize.ActionDelete), h.Delete)
}

func (r *Router) registerExpenseRoutes(
	api fiber.Router,
	h *handler.ExpenseHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	expenses := api.Group("/expenses", authRequired)
	expenses.Get("/", requirePerm(authorize.ResourceExpense, authorize.ActionList), h.List)
	expenses.Post("/", requirePerm(authorize.ResourceExpense, authorize.ActionCreate), h.Create)
	expenses.Delete("/:id", requirePerm(authorize.ResourceExpense, authorize.ActionDelete), h.Delete)
}

func (r *Router) registerReportRoutes(
	api fiber.Router,
	h *handler.ReportHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	api.Get("/reports/summary", authRequired, requirePerm(authorize.ResourceReport, authorize.ActionRead), h.Summary)
}
