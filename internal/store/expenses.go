package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

var expenseColumns = []string{"id", "owner_id", "date", "category", "description", "amount", "created_at", "updated_at"}

func (s *Store) CreateExpense(ctx context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = model.NewID()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	ins := s.builder().
		Insert(expensesTable).
		Columns(expenseColumns...).
		Values(e.ID, e.OwnerID, e.Date.String(), e.Category, e.Description, e.Amount, e.CreatedAt, e.UpdatedAt)
	stmt, args := ins.Query()
	if _, err := execStmt(ctx, s.drv, stmt, args); err != nil {
		return fmt.Errorf("store: create expense: %w", err)
	}
	return nil
}

// ListExpenses returns expenses dated within [from, to]. Zero bounds are open.
func (s *Store) ListExpenses(ctx context.Context, owner uuid.UUID, from, to model.Date) ([]model.Expense, error) {
	sel := s.builder().
		Select(expenseColumns...).
		From(s.builder().Table(expensesTable)).
		Where(ownedInRange(owner, from, to)).
		OrderBy("date", "id")
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, s.drv, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("store: query expenses: %w", err)
	}
	defer rows.Close()

	var out []model.Expense
	for rows.Next() {
		var (
			e    model.Expense
			date string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &date, &e.Category, &e.Description, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = model.ParseDate(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id uuid.UUID) error {
	return s.deleteOwned(ctx, expensesTable, owner, id)
}

func ownedInRange(owner uuid.UUID, from, to model.Date) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("owner_id", owner)}
	if !from.IsZero() {
		preds = append(preds, entsql.GTE("date", from.String()))
	}
	if !to.IsZero() {
		preds = append(preds, entsql.LTE("date", to.String()))
	}
	return entsql.And(preds...)
}
