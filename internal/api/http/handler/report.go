package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/service/report"
)

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// GET /reports/summary?from&to
func (h *ReportHandler) Summary(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	from, okFrom := optionalDate(c.Query("from"))
	to, okTo := optionalDate(c.Query("to"))
	if !okFrom || !okTo {
		return badRequest(c, report.ErrInvalidRange.Error())
	}

	sum, err := h.svc.Summary(c.Context(), owner, from, to)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return ok(c, sum)
}
