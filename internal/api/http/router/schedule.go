package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/api/http/handler"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
)

func (r *Router) registerScheduleRoutes(
	api fiber.Router,
	h *handler.ScheduleHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	schedule := api.Group("/schedule", authRequired, requirePerm(authorize.ResourceSchedule, authorize.ActionRead))
	schedule.Get("/", h.View)
	schedule.Get("/calendar.ics", h.Calendar)
}
