package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/job"
)

type JobHandler struct {
	svc          job.Service
	businessName string
}

func NewJobHandler(svc job.Service, businessName string) *JobHandler {
	return &JobHandler{svc: svc, businessName: businessName}
}

func mapJobError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, job.ErrJobNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, job.ErrClientNotFound),
		errors.Is(err, job.ErrEmployeeNotFound),
		errors.Is(err, job.ErrInvalidDate),
		errors.Is(err, job.ErrInvalidTime),
		errors.Is(err, job.ErrInvalidRule),
		errors.Is(err, job.ErrInvalidEndDate),
		errors.Is(err, job.ErrInvalidStatus),
		errors.Is(err, job.ErrInvalidPayment),
		errors.Is(err, job.ErrInvalidRateType),
		errors.Is(err, job.ErrNegativeValue),
		errors.Is(err, job.ErrInstanceRecurrence),
		errors.Is(err, job.ErrNoClientEmail):
		return badRequest(c, err.Error())
	case errors.Is(err, job.ErrOccupiedDate):
		return conflict(c, err.Error())
	case errors.Is(err, job.ErrInvoicingDisabled):
		return unavailable(c, err.Error())
	default:
		slog.Error("job request failed", "path", c.Path(), "err", err)
		return internalError(c)
	}
}

type jobBody struct {
	ClientID          *uuid.UUID  `json:"client_id"`
	EmployeeIDs       []uuid.UUID `json:"employee_ids"`
	Title             string      `json:"title" validate:"required,max=200"`
	Date              model.Date  `json:"date"`
	Time              string      `json:"time"`
	DurationHours     float64     `json:"duration_hours"`
	Notes             string      `json:"notes"`
	Amount            int64       `json:"amount"`
	RateType          string      `json:"rate_type"`
	RecurrenceRule    string      `json:"recurrence_rule"`
	RecurrenceEndDate *model.Date `json:"recurrence_end_date"`
}

// ---------------------------------------------------------------------------
// Job CRUD
// ---------------------------------------------------------------------------

// POST /jobs
func (h *JobHandler) Create(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body jobBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	j, err := h.svc.Create(c.Context(), owner, job.CreateRequest{
		ClientID:          body.ClientID,
		EmployeeIDs:       body.EmployeeIDs,
		Title:             body.Title,
		Date:              body.Date,
		Time:              body.Time,
		DurationHours:     body.DurationHours,
		Notes:             body.Notes,
		Amount:            body.Amount,
		RateType:          model.RateType(body.RateType),
		RecurrenceRule:    model.Rule(body.RecurrenceRule),
		RecurrenceEndDate: body.RecurrenceEndDate,
	})
	if err != nil {
		return mapJobError(c, err)
	}

	return created(c, j)
}

// GET /jobs?from&to&status&employee_id&client_id
func (h *JobHandler) List(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		From       string `query:"from"`
		To         string `query:"to"`
		Status     string `query:"status"`
		EmployeeID string `query:"employee_id"`
		ClientID   string `query:"client_id"`
	}
	_ = c.Bind().Query(&q)

	from, okFrom := optionalDate(q.From)
	to, okTo := optionalDate(q.To)
	if !okFrom || !okTo {
		return badRequest(c, "from and to must be in YYYY-MM-DD format")
	}
	employeeID, valid := optionalUUID(q.EmployeeID)
	if !valid {
		return badRequest(c, "invalid employee_id")
	}
	clientID, valid := optionalUUID(q.ClientID)
	if !valid {
		return badRequest(c, "invalid client_id")
	}

	jobs, err := h.svc.List(c.Context(), owner, job.ListRequest{
		From:       from,
		To:         to,
		Status:     model.JobStatus(q.Status),
		EmployeeID: employeeID,
		ClientID:   clientID,
	})
	if err != nil {
		return mapJobError(c, err)
	}

	return ok(c, fiber.Map{"jobs": jobs, "total": len(jobs)})
}

// GET /jobs/:id
func (h *JobHandler) Get(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid job id")
	}

	j, err := h.svc.Get(c.Context(), owner, id)
	if err != nil {
		return mapJobError(c, err)
	}
	return ok(c, j)
}

// PATCH /jobs/:id
func (h *JobHandler) Update(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid job id")
	}

	var body struct {
		ClientID          *uuid.UUID   `json:"client_id"`
		ClearClient       bool         `json:"clear_client"`
		EmployeeIDs       *[]uuid.UUID `json:"employee_ids"`
		Title             *string      `json:"title"`
		Date              *model.Date  `json:"date"`
		Time              *string      `json:"time"`
		DurationHours     *float64     `json:"duration_hours"`
		Notes             *string      `json:"notes"`
		Amount            *int64       `json:"amount"`
		RateType          *string      `json:"rate_type"`
		RecurrenceRule    *string      `json:"recurrence_rule"`
		RecurrenceEndDate *model.Date  `json:"recurrence_end_date"`
		ClearEndDate      bool         `json:"clear_recurrence_end_date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := job.UpdateRequest{
		ClientID:          body.ClientID,
		ClearClient:       body.ClearClient,
		EmployeeIDs:       body.EmployeeIDs,
		Title:             body.Title,
		Date:              body.Date,
		Time:              body.Time,
		DurationHours:     body.DurationHours,
		Notes:             body.Notes,
		Amount:            body.Amount,
		RecurrenceEndDate: body.RecurrenceEndDate,
		ClearEndDate:      body.ClearEndDate,
	}
	if body.RateType != nil {
		rt := model.RateType(*body.RateType)
		req.RateType = &rt
	}
	if body.RecurrenceRule != nil {
		rule := model.Rule(*body.RecurrenceRule)
		req.RecurrenceRule = &rule
	}

	j, err := h.svc.Update(c.Context(), owner, id, req)
	if err != nil {
		return mapJobError(c, err)
	}
	return ok(c, j)
}

// DELETE /jobs/:id
func (h *JobHandler) Delete(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid job id")
	}

	if err := h.svc.Delete(c.Context(), owner, id); err != nil {
		return mapJobError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Status, payment, invoice
// ---------------------------------------------------------------------------

// PATCH /jobs/:id/status
func (h *JobHandler) SetStatus(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid job id")
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	j, err := h.svc.SetStatus(c.Context(), owner, id, model.JobStatus(body.Status))
	if err != nil {
		return mapJobError(c, err)
	}
	return ok(c, j)
}

// PATCH /jobs/:id/payment
func (h *JobHandler) SetPayment(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid job id")
	}

	var body struct {
		PaymentStatus string `json:"payment_status" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	j, err := h.svc.SetPayment(c.Context(), owner, id, model.PaymentStatus(body.PaymentStatus))
	if err != nil {
		return mapJobError(c, err)
	}
	return ok(c, j)
}

// POST /jobs/:id/invoice
func (h *JobHandler) SendInvoice(c fiber.Ctx) error {
	owner, valid := ownerFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid job id")
	}

	j, err := h.svc.SendInvoice(c.Context(), owner, id, h.businessName)
	if err != nil {
		return mapJobError(c, err)
	}
	return ok(c, j)
}
