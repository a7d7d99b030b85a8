package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/schedule"
)

type ScheduleHandler struct {
	svc schedule.Service
}

func NewScheduleHandler(svc schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, schedule.ErrInvalidView), errors.Is(err, schedule.ErrInvalidAnchor):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /schedule?view=week|month&date=YYYY-MM-DD
func (h *ScheduleHandler) View(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	mode, err := schedule.ParseMode(c.Query("view"))
	if err != nil {
		return mapScheduleError(c, err)
	}
	anchor, valid := optionalDate(c.Query("date"))
	if !valid {
		return mapScheduleError(c, schedule.ErrInvalidAnchor)
	}

	view, err := h.svc.View(c.Context(), schedule.ViewRequest{
		Owner:   owner,
		Session: sessionFromClaims(c),
		Mode:    mode,
		Anchor:  anchor,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}

	return ok(c, view)
}

// GET /schedule/calendar.ics?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ScheduleHandler) Calendar(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	from, okFrom := optionalDate(c.Query("from"))
	to, okTo := optionalDate(c.Query("to"))
	if !okFrom || !okTo {
		return badRequest(c, "from and to must be in YYYY-MM-DD format")
	}
	if from.IsZero() {
		from = model.Today()
	}
	if to.IsZero() {
		to = from.AddMonths(1)
	}

	body, err := h.svc.Calendar(c.Context(), owner, recurrence.NewRange(from, to))
	if err != nil {
		return mapScheduleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="schedule.ics"`)
	return c.Send(body)
}
