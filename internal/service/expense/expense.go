package expense

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
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrDateRequired     = errors.New("date is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidRange     = errors.New("from must not be after to")
)

type CreateRequest struct {
	Date        model.Date
	Category    string
	Description string
	Amount      int64
}

type Store interface {
	CreateExpense(ctx context.Context, e *model.Expense) error
	ListExpenses(ctx context.Context, owner uuid.UUID, from, to model.Date) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, owner, id uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Expense, error)
	List(ctx context.Context, owner uuid.UUID, from, to model.Date) ([]model.Expense, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type expenseService struct {
	db Store
}

func New(db Store) Service {
	return &expenseService{db: db}
}

func (s *expenseService) Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Expense, error) {
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		return nil, ErrCategoryRequired
	}
	if req.Amount < 0 {
		return nil, ErrNegativeAmount
	}

	e := &model.Expense{
		OwnerID:     owner,
		Date:        req.Date,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
	}
	if err := s.db.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *expenseService) List(ctx context.Context, owner uuid.UUID, from, to model.Date) ([]model.Expense, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, ErrInvalidRange
	}
	list, err := s.db.ListExpenses(ctx, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if list == nil {
		list = []model.Expense{}
	}
	return list, nil
}

func (s *expenseService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	err := s.db.DeleteExpense(ctx, owner, id)
	if store.IsNotFound(err) {
		return ErrExpenseNotFound
	}
	return err
}
