package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/api/http/handler"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
)

func (r *Router) registerJobRoutes(
	api fiber.Router,
	h *handler.JobHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	jobs := api.Group("/jobs", authRequired)

	jobs.Get("/", requirePerm(authorize.ResourceJob, authorize.ActionList), h.List)
	jobs.Post("/", requirePerm(authorize.ResourceJob, authorize.ActionCreate), h.Create)
	jobs.Get("/:id", requirePerm(authorize.ResourceJob, authorize.ActionRead), h.Get)
	jobs.Patch("/:id", requirePerm(authorize.ResourceJob, authorize.ActionUpdate), h.Update)
	jobs.Delete("/:id", requirePerm(authorize.ResourceJob, authorize.ActionDelete), h.Delete)

	jobs.Patch("/:id/status", requirePerm(authorize.ResourceJob, authorize.ActionUpdate), h.SetStatus)
	jobs.Patch("/:id/payment", requirePerm(authorize.ResourceJob, authorize.ActionUpdate), h.SetPayment)
	jobs.Post("/:id/invoice", requirePerm(authorize.ResourceInvoice, authorize.ActionSend), h.SendInvoice)
}
