package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

var employeeColumns = []string{"id", "owner_id", "name", "email", "phone", "hourly_rate", "active", "created_at", "updated_at"}

func (s *Store) CreateEmployee(ctx context.Context, e *model.Employee) error {
	if e.ID == uuid.Nil {
		e.ID = model.NewID()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	ins := s.builder().
		Insert(employeesTable).
		Columns(employeeColumns...).
		Values(e.ID, e.OwnerID, e.Name, e.Email, e.Phone, e.HourlyRate, e.Active, e.CreatedAt, e.UpdatedAt)
	stmt, args := ins.Query()
	if _, err := execStmt(ctx, s.drv, stmt, args); err != nil {
		return fmt.Errorf("store: create employee: %w", err)
	}
	return nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *model.Employee) error {
	e.UpdatedAt = time.Now().UTC()
	upd := s.builder().
		Update(employeesTable).
		Set("name", e.Name).
		Set("email", e.Email).
		Set("phone", e.Phone).
		Set("hourly_rate", e.HourlyRate).
		Set("active", e.Active).
		Set("updated_at", e.UpdatedAt).
		Where(entsql.And(entsql.EQ("id", e.ID), entsql.EQ("owner_id", e.OwnerID)))
	stmt, args := upd.Query()
	n, err := execStmt(ctx, s.drv, stmt, args)
	if err != nil {
		return fmt.Errorf("store: update employee: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, owner, id uuid.UUID) (*model.Employee, error) {
	list, err := s.selectEmployees(ctx, entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", owner)))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// ListEmployees returns the owner's crew. activeOnly hides deactivated members.
func (s *Store) ListEmployees(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]model.Employee, error) {
	where := entsql.EQ("owner_id", owner)
	if activeOnly {
		where = entsql.And(where, entsql.EQ("active", true))
	}
	return s.selectEmployees(ctx, where)
}

func (s *Store) DeleteEmployee(ctx context.Context, owner, id uuid.UUID) error {
	return s.deleteOwned(ctx, employeesTable, owner, id)
}

func (s *Store) selectEmployees(ctx context.Context, where *entsql.Predicate) ([]model.Employee, error) {
	sel := s.builder().
		Select(employeeColumns...).
		From(s.builder().Table(employeesTable)).
		Where(where).
		OrderBy("name", "id")
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, s.drv, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("store: query employees: %w", err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Email, &e.Phone, &e.HourlyRate, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
