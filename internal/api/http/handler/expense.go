package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/expense"
)

type ExpenseHandler struct {
	svc expense.Service
}

func NewExpenseHandler(svc expense.Service) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

func mapExpenseError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, expense.ErrExpenseNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, expense.ErrDateRequired),
		errors.Is(err, expense.ErrCategoryRequired),
		errors.Is(err, expense.ErrNegativeAmount),
		errors.Is(err, expense.ErrInvalidRange):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /expenses
func (h *ExpenseHandler) Create(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Date        model.Date `json:"date"`
		Category    string     `json:"category" validate:"required,max=100"`
		Description string     `json:"description"`
		Amount      int64      `json:"amount"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.svc.Create(c.Context(), owner, expense.CreateRequest{
		Date:        body.Date,
		Category:    body.Category,
		Description: body.Description,
		Amount:      body.Amount,
	})
	if err != nil {
		return mapExpenseError(c, err)
	}
	return created(c, e)
}

// GET /expenses?from&to
func (h *ExpenseHandler) List(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	from, okFrom := optionalDate(c.Query("from"))
	to, okTo := optionalDate(c.Query("to"))
	if !okFrom || !okTo {
		return badRequest(c, "from and to must be in YYYY-MM-DD format")
	}

	expenses, err := h.svc.List(c.Context(), owner, from, to)
	if err != nil {
		return mapExpenseError(c, err)
	}
	return ok(c, fiber.Map{"expenses": expenses, "total": len(expenses)})
}

// DELETE /expenses/:id
func (h *ExpenseHandler) Delete(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid expense id")
	}

	if err := h.svc.Delete(c.Context(), owner, id); err != nil {
		return mapExpenseError(c, err)
	}
	return noContent(c)
}
