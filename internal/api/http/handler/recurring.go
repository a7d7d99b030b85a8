package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/service/recurring"
	"github.com/Alijeyrad/serviceflow_backend/pkg/reqctx"
)

type RecurringHandler struct {
	svc recurring.Service
}

func NewRecurringHandler(svc recurring.Service) *RecurringHandler {
	return &RecurringHandler{svc: svc}
}

// POST /recurring-jobs/generate
func (h *RecurringHandler) Generate(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	rng, err := recurring.ParseRange(body.StartDate, body.EndDate)
	if err != nil {
		return badRequest(c, recurring.ErrInvalidRange.Error())
	}

	n, err := h.svc.Generate(c.Context(), recurring.SourceHTTP, owner, rng)
	if err != nil {
		slog.Error("generate recurring jobs",
			"request_id", reqctx.RequestIDFromContext(c.Context()),
			"owner_id", owner,
			"err", err,
		)
		if errors.Is(err, recurring.ErrOwnerRequired) {
			return unauthorized(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate recurring jobs"})
	}

	return c.JSON(fiber.Map{"generated": n})
}
