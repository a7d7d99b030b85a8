package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/service/employee"
)

type EmployeeHandler struct {
	svc employee.Service
}

func NewEmployeeHandler(svc employee.Service) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

func mapEmployeeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, employee.ErrNameRequired), errors.Is(err, employee.ErrNegativeRate):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

type employeeBody struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	HourlyRate int64  `json:"hourly_rate"`
	Active     *bool  `json:"active"`
}

func (b employeeBody) request() employee.CreateRequest {
	return employee.CreateRequest{
		Name:       b.Name,
		Email:      b.Email,
		Phone:      b.Phone,
		HourlyRate: b.HourlyRate,
		Active:     b.Active,
	}
}

// POST /employees
func (h *EmployeeHandler) Create(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body employeeBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.svc.Create(c.Context(), owner, body.request())
	if err != nil {
		return mapEmployeeError(c, err)
	}
	return created(c, e)
}

// PUT /employees/:id
func (h *EmployeeHandler) Update(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid employee id")
	}

	var body employeeBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.svc.Update(c.Context(), owner, id, body.request())
	if err != nil {
		return mapEmployeeError(c, err)
	}
	return ok(c, e)
}

// GET /employees?active=true
func (h *EmployeeHandler) List(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	employees, err := h.svc.List(c.Context(), owner, fiber.Query[bool](c, "active"))
	if err != nil {
		return mapEmployeeError(c, err)
	}
	return ok(c, fiber.Map{"employees": employees, "total": len(employees)})
}

// DELETE /employees/:id
func (h *EmployeeHandler) Delete(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid employee id")
	}

	if err := h.svc.Delete(c.Context(), owner, id); err != nil {
		return mapEmployeeError(c, err)
	}
	return noContent(c)
}
