package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/internal/service/client"
)

type ClientHandler struct {
	svc client.Service
}

func NewClientHandler(svc client.Service) *ClientHandler {
	return &ClientHandler{svc: svc}
}

func mapClientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, client.ErrClientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, client.ErrNameRequired), errors.Is(err, client.ErrInvalidEmail):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

type clientBody struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (b clientBody) request() client.CreateRequest {
	return client.CreateRequest{
		Name:    b.Name,
		Email:   b.Email,
		Phone:   b.Phone,
		Address: b.Address,
		Notes:   b.Notes,
	}
}

// POST /clients
func (h *ClientHandler) Create(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body clientBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cl, err := h.svc.Create(c.Context(), owner, body.request())
	if err != nil {
		return mapClientError(c, err)
	}
	return created(c, cl)
}

// PUT /clients/:id
func (h *ClientHandler) Update(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid client id")
	}

	var body clientBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cl, err := h.svc.Update(c.Context(), owner, id, body.request())
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, cl)
}

// GET /clients
func (h *ClientHandler) List(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	clients, err := h.svc.List(c.Context(), owner)
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, fiber.Map{"clients": clients, "total": len(clients)})
}

// GET /clients/:id
func (h *ClientHandler) Get(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid client id")
	}

	cl, err := h.svc.Get(c.Context(), owner, id)
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, cl)
}

// DELETE /clients/:id
func (h *ClientHandler) Delete(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid client id")
	}

	if err := h.svc.Delete(c.Context(), owner, id); err != nil {
		return mapClientError(c, err)
	}
	return noContent(c)
}
