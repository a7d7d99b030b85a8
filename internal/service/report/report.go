package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
)

var ErrInvalidRange = errors.New("from and to are required and from must not be after to")

// Summary is the money picture of one date range. Amounts are minor units.
type Summary struct {
	From        model.Date `json:"from"`
	To          model.Date `json:"to"`
	Revenue     int64      `json:"revenue"`
	Outstanding int64      `json:"outstanding"`
	Overdue     int64      `json:"overdue"`
	Expenses    int64      `json:"expenses"`
	Net         int64      `json:"net"`

	JobsByStatus map[model.JobStatus]int64 `json:"jobs_by_status"`
	TotalJobs    int64                     `json:"total_jobs"`
}

type Store interface {
	JobTotals(ctx context.Context, owner uuid.UUID, from, to model.Date) ([]store.JobTotals, error)
	ExpenseTotal(ctx context.Context, owner uuid.UUID, from, to model.Date) (int64, error)
}

type Service interface {
	Summary(ctx context.Context, owner uuid.UUID, from, to model.Date) (*Summary, error)
}

type reportService struct {
	db Store
}

func New(db Store) Service {
	return &reportService{db: db}
}

// Summary counts paid jobs as revenue and pending or overdue jobs as
// outstanding. Cancelled jobs are counted but never owed.
func (s *reportService) Summary(ctx context.Context, owner uuid.UUID, from, to model.Date) (*Summary, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, ErrInvalidRange
	}

	totals, err := s.db.JobTotals(ctx, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("job totals: %w", err)
	}
	expenses, err := s.db.ExpenseTotal(ctx, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("expense total: %w", err)
	}

	sum := &Summary{
		From:         from,
		To:           to,
		Expenses:     expenses,
		JobsByStatus: map[model.JobStatus]int64{},
	}
	for _, t := range totals {
		sum.JobsByStatus[t.Status] += t.Count
		sum.TotalJobs += t.Count

		switch {
		case t.PaymentStatus == model.PaymentPaid:
			sum.Revenue += t.Amount
		case t.Status == model.JobStatusCancelled:
		case t.PaymentStatus == model.PaymentOverdue:
			sum.Outstanding += t.Amount
			sum.Overdue += t.Amount
		default:
			sum.Outstanding += t.Amount
		}
	}
	sum.Net = sum.Revenue - sum.Expenses
	return sum, nil
}
