package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/api/http/handler"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
)

func (r *Router) registerRecurringRoutes(
	api fiber.Router,
	h *handler.RecurringHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	group := api.Group("/recurring-jobs", authRequired)
	group.Post("/generate", requirePerm(authorize.ResourceJob, authorize.ActionGenerate), h.Generate)
}
