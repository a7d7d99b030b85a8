package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNameRequired     = errors.New("name is required")
	ErrNegativeRate     = errors.New("hourly_rate must not be negative")
)

type CreateRequest struct {
	Name       string
	Email      string
	Phone      string
	HourlyRate int64
	Active     *bool
}

type Store interface {
	CreateEmployee(ctx context.Context, e *model.Employee) error
	UpdateEmployee(ctx context.Context, e *model.Employee) error
	GetEmployee(ctx context.Context, owner, id uuid.UUID) (*model.Employee, error)
	ListEmployees(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]model.Employee, error)
	DeleteEmployee(ctx context.Context, owner, id uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Employee, error)
	Update(ctx context.Context, owner, id uuid.UUID, req CreateRequest) (*model.Employee, error)
	List(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]model.Employee, error)
	// Delete removes the employee and their job assignments.
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type employeeService struct {
	db Store
}

func New(db Store) Service {
	return &employeeService{db: db}
}

func (s *employeeService) Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Employee, error) {
	e := &model.Employee{OwnerID: owner, Active: true}
	if err := apply(e, req); err != nil {
		return nil, err
	}
	if err := s.db.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *employeeService) Update(ctx context.Context, owner, id uuid.UUID, req CreateRequest) (*model.Employee, error) {
	e, err := s.db.GetEmployee(ctx, owner, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := apply(e, req); err != nil {
		return nil, err
	}
	if err := s.db.UpdateEmployee(ctx, e); err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (s *employeeService) List(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]model.Employee, error) {
	list, err := s.db.ListEmployees(ctx, owner, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if list == nil {
		list = []model.Employee{}
	}
	return list, nil
}

func (s *employeeService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return notFound(s.db.DeleteEmployee(ctx, owner, id))
}

func apply(e *model.Employee, req CreateRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrNameRequired
	}
	if req.HourlyRate < 0 {
		return ErrNegativeRate
	}
	e.Name = name
	e.Email = strings.TrimSpace(req.Email)
	e.Phone = strings.TrimSpace(req.Phone)
	e.HourlyRate = req.HourlyRate
	if req.Active != nil {
		e.Active = *req.Active
	}
	return nil
}

func notFound(err error) error {
	if store.IsNotFound(err) {
		return ErrEmployeeNotFound
	}
	return err
}
