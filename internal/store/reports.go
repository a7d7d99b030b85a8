package store

import (
	"context"
	stdsql "database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

// JobTotals is one bucket of jobs grouped by lifecycle and payment status.
type JobTotals struct {
	Status        model.JobStatus
	PaymentStatus model.PaymentStatus
	Count         int64
	Amount        int64
}

// JobTotals aggregates the owner's jobs dated within [from, to].
func (s *Store) JobTotals(ctx context.Context, owner uuid.UUID, from, to model.Date) ([]JobTotals, error) {
	sel := s.builder().
		Select("status", "payment_status", entsql.Count("*"), entsql.Sum("amount")).
		From(s.builder().Table(jobsTable)).
		Where(ownedInRange(owner, from, to)).
		GroupBy("status", "payment_status").
		OrderBy("status", "payment_status")
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, s.drv, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("store: job totals: %w", err)
	}
	defer rows.Close()

	var out []JobTotals
	for rows.Next() {
		var (
			t               JobTotals
			status, payment string
			amount          stdsql.NullInt64
		)
		if err := rows.Scan(&status, &payment, &t.Count, &amount); err != nil {
			return nil, fmt.Errorf("scan job totals: %w", err)
		}
		t.Status = model.JobStatus(status)
		t.PaymentStatus = model.PaymentStatus(payment)
		t.Amount = amount.Int64
		out = append(out, t)
	}
	return out, rows.Err()
}

// ExpenseTotal sums the owner's expenses dated within [from, to].
func (s *Store) ExpenseTotal(ctx context.Context, owner uuid.UUID, from, to model.Date) (int64, error) {
	sel := s.builder().
		Select(entsql.Sum("amount")).
		From(s.builder().Table(expensesTable)).
		Where(ownedInRange(owner, from, to))
	total, err := s.sumInt64(ctx, sel)
	if err != nil {
		return 0, fmt.Errorf("store: expense total: %w", err)
	}
	return total, nil
}
