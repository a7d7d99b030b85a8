package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
	"github.com/Alijeyrad/serviceflow_backend/pkg/email"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	ClientID          *uuid.UUID
	EmployeeIDs       []uuid.UUID
	Title             string
	Date              model.Date
	Time              string
	DurationHours     float64
	Notes             string
	Amount            int64
	RateType          model.RateType
	RecurrenceRule    model.Rule
	RecurrenceEndDate *model.Date
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	ClientID          *uuid.UUID
	ClearClient       bool
	EmployeeIDs       *[]uuid.UUID
	Title             *string
	Date              *model.Date
	Time              *string
	DurationHours     *float64
	Notes             *string
	Amount            *int64
	RateType          *model.RateType
	RecurrenceRule    *model.Rule
	RecurrenceEndDate *model.Date
	ClearEndDate      bool
}

type ListRequest struct {
	From, To   model.Date
	Status     model.JobStatus
	EmployeeID uuid.UUID
	ClientID   uuid.UUID
}

// Store is the persistence the job service needs.
type Store interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, owner, id uuid.UUID) (*model.Job, error)
	ListJobs(ctx context.Context, f store.JobFilter) ([]model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, owner, id uuid.UUID) error
	SetJobStatus(ctx context.Context, owner, id uuid.UUID, status model.JobStatus) error
	SetPaymentStatus(ctx context.Context, owner, id uuid.UUID, status model.PaymentStatus) error
	MarkInvoiceSent(ctx context.Context, owner, id uuid.UUID, at time.Time) error
	GetClient(ctx context.Context, owner, id uuid.UUID) (*model.Client, error)
	GetEmployee(ctx context.Context, owner, id uuid.UUID) (*model.Employee, error)
}

// InvoiceSender is satisfied by *email.Client.
type InvoiceSender interface {
	SendInvoice(ctx context.Context, data email.InvoiceEmailData) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Job, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, owner uuid.UUID, req ListRequest) ([]model.Job, error)
	Update(ctx context.Context, owner, id uuid.UUID, req UpdateRequest) (*model.Job, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	SetStatus(ctx context.Context, owner, id uuid.UUID, status model.JobStatus) (*model.Job, error)
	SetPayment(ctx context.Context, owner, id uuid.UUID, status model.PaymentStatus) (*model.Job, error)
	SendInvoice(ctx context.Context, owner, id uuid.UUID, businessName string) (*model.Job, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type jobService struct {
	db      Store
	invoice InvoiceSender
	now     func() time.Time
}

// New builds the job service. invoice may be nil, which disables invoicing.
func New(db Store, invoice InvoiceSender) Service {
	return &jobService{db: db, invoice: invoice, now: time.Now}
}

func (s *jobService) Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Job, error) {
	j := &model.Job{
		OwnerID:           owner,
		ClientID:          req.ClientID,
		EmployeeIDs:       req.EmployeeIDs,
		Title:             strings.TrimSpace(req.Title),
		Date:              req.Date,
		Time:              strings.TrimSpace(req.Time),
		DurationHours:     req.DurationHours,
		Status:            model.JobStatusScheduled,
		Notes:             req.Notes,
		Amount:            req.Amount,
		RateType:          req.RateType,
		PaymentStatus:     model.PaymentPending,
		RecurrenceRule:    req.RecurrenceRule,
		RecurrenceEndDate: req.RecurrenceEndDate,
	}
	if j.RateType == "" {
		j.RateType = model.RateFlat
	}
	if j.EmployeeIDs == nil {
		j.EmployeeIDs = []uuid.UUID{}
	}
	j.IsRecurring = j.RecurrenceRule != model.RuleNone

	if err := s.validate(ctx, j); err != nil {
		return nil, err
	}
	if err := s.db.CreateJob(ctx, j); err != nil {
		return nil, mapStoreError(err)
	}
	return j, nil
}

func (s *jobService) Get(ctx context.Context, owner, id uuid.UUID) (*model.Job, error) {
	j, err := s.db.GetJob(ctx, owner, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return j, nil
}

func (s *jobService) List(ctx context.Context, owner uuid.UUID, req ListRequest) ([]model.Job, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	jobs, err := s.db.ListJobs(ctx, store.JobFilter{
		Owner:      owner,
		From:       req.From,
		To:         req.To,
		Status:     req.Status,
		EmployeeID: req.EmployeeID,
		ClientID:   req.ClientID,
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}

// Update edits one row. Changes to a recurring parent never reach instances
// that were already generated.
func (s *jobService) Update(ctx context.Context, owner, id uuid.UUID, req UpdateRequest) (*model.Job, error) {
	j, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if req.ClearClient {
		j.ClientID = nil
	} else if req.ClientID != nil {
		j.ClientID = req.ClientID
	}
	if req.EmployeeIDs != nil {
		j.EmployeeIDs = *req.EmployeeIDs
	}
	if req.Title != nil {
		j.Title = strings.TrimSpace(*req.Title)
	}
	if req.Date != nil {
		j.Date = *req.Date
	}
	if req.Time != nil {
		j.Time = strings.TrimSpace(*req.Time)
	}
	if req.DurationHours != nil {
		j.DurationHours = *req.DurationHours
	}
	if req.Notes != nil {
		j.Notes = *req.Notes
	}
	if req.Amount != nil {
		j.Amount = *req.Amount
	}
	if req.RateType != nil {
		j.RateType = *req.RateType
	}
	if req.RecurrenceRule != nil {
		if j.ParentJobID != nil && *req.RecurrenceRule != model.RuleNone {
			return nil, ErrInstanceRecurrence
		}
		j.RecurrenceRule = *req.RecurrenceRule
		j.IsRecurring = j.RecurrenceRule != model.RuleNone
	}
	if req.ClearEndDate {
		j.RecurrenceEndDate = nil
	} else if req.RecurrenceEndDate != nil {
		j.RecurrenceEndDate = req.RecurrenceEndDate
	}

	if err := s.validate(ctx, j); err != nil {
		return nil, err
	}
	if err := s.db.UpdateJob(ctx, j); err != nil {
		return nil, mapStoreError(err)
	}
	return j, nil
}

func (s *jobService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return mapStoreError(s.db.DeleteJob(ctx, owner, id))
}

func (s *jobService) SetStatus(ctx context.Context, owner, id uuid.UUID, status model.JobStatus) (*model.Job, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.db.SetJobStatus(ctx, owner, id, status); err != nil {
		return nil, mapStoreError(err)
	}
	return s.Get(ctx, owner, id)
}

func (s *jobService) SetPayment(ctx context.Context, owner, id uuid.UUID, status model.PaymentStatus) (*model.Job, error) {
	if !status.Valid() {
		return nil, ErrInvalidPayment
	}
	if err := s.db.SetPaymentStatus(ctx, owner, id, status); err != nil {
		return nil, mapStoreError(err)
	}
	return s.Get(ctx, owner, id)
}

// SendInvoice emails the job's client and stamps invoice_sent_at.
func (s *jobService) SendInvoice(ctx context.Context, owner, id uuid.UUID, businessName string) (*model.Job, error) {
	if s.invoice == nil {
		return nil, ErrInvoicingDisabled
	}
	j, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if j.ClientID == nil {
		return nil, ErrNoClientEmail
	}
	client, err := s.db.GetClient(ctx, owner, *j.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNoClientEmail
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	if strings.TrimSpace(client.Email) == "" {
		return nil, ErrNoClientEmail
	}

	err = s.invoice.SendInvoice(ctx, email.InvoiceEmailData{
		ClientName:   client.Name,
		ClientEmail:  client.Email,
		JobTitle:     j.Title,
		JobDate:      j.Date.String(),
		Hours:        j.DurationHours,
		Hourly:       j.RateType == model.RateHourly,
		AmountMinor:  j.Amount,
		BusinessName: businessName,
	})
	if err != nil {
		return nil, fmt.Errorf("send invoice: %w", err)
	}

	at := s.now().UTC()
	if err := s.db.MarkInvoiceSent(ctx, owner, id, at); err != nil {
		return nil, mapStoreError(err)
	}
	j.InvoiceSentAt = &at
	return j, nil
}

func (s *jobService) validate(ctx context.Context, j *model.Job) error {
	if j.Date.IsZero() {
		return ErrInvalidDate
	}
	if j.Time != "" {
		if _, err := time.Parse("15:04", j.Time); err != nil {
			return ErrInvalidTime
		}
	}
	if j.Amount < 0 || j.DurationHours < 0 {
		return ErrNegativeValue
	}
	if !j.RateType.Valid() {
		return ErrInvalidRateType
	}
	if j.RecurrenceRule != model.RuleNone && !j.RecurrenceRule.Valid() {
		return ErrInvalidRule
	}
	if j.RecurrenceEndDate != nil && j.RecurrenceEndDate.Before(j.Date) {
		return ErrInvalidEndDate
	}

	if j.ClientID != nil {
		if _, err := s.db.GetClient(ctx, j.OwnerID, *j.ClientID); err != nil {
			if store.IsNotFound(err) {
				return ErrClientNotFound
			}
			return fmt.Errorf("check client: %w", err)
		}
	}
	for _, e := range j.EmployeeIDs {
		if _, err := s.db.GetEmployee(ctx, j.OwnerID, e); err != nil {
			if store.IsNotFound(err) {
				return fmt.Errorf("%w: %s", ErrEmployeeNotFound, e)
			}
			return fmt.Errorf("check employee: %w", err)
		}
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case store.IsNotFound(err):
		return ErrJobNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrOccupiedDate
	}
	return err
}
