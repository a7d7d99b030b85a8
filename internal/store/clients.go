package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

var clientColumns = []string{"id", "owner_id", "name", "email", "phone", "address", "notes", "created_at", "updated_at"}

func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = model.NewID()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	ins := s.builder().
		Insert(clientsTable).
		Columns(clientColumns...).
		Values(c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Notes, c.CreatedAt, c.UpdatedAt)
	stmt, args := ins.Query()
	if _, err := execStmt(ctx, s.drv, stmt, args); err != nil {
		return fmt.Errorf("store: create client: %w", err)
	}
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, c *model.Client) error {
	c.UpdatedAt = time.Now().UTC()
	upd := s.builder().
		Update(clientsTable).
		Set("name", c.Name).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("address", c.Address).
		Set("notes", c.Notes).
		Set("updated_at", c.UpdatedAt).
		Where(entsql.And(entsql.EQ("id", c.ID), entsql.EQ("owner_id", c.OwnerID)))
	stmt, args := upd.Query()
	n, err := execStmt(ctx, s.drv, stmt, args)
	if err != nil {
		return fmt.Errorf("store: update client: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, owner, id uuid.UUID) (*model.Client, error) {
	clients, err := s.selectClients(ctx, entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", owner)))
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrNotFound
	}
	return &clients[0], nil
}

func (s *Store) ListClients(ctx context.Context, owner uuid.UUID) ([]model.Client, error) {
	return s.selectClients(ctx, entsql.EQ("owner_id", owner))
}

func (s *Store) DeleteClient(ctx context.Context, owner, id uuid.UUID) error {
	return s.deleteOwned(ctx, clientsTable, owner, id)
}

func (s *Store) selectClients(ctx context.Context, where *entsql.Predicate) ([]model.Client, error) {
	sel := s.builder().
		Select(clientColumns...).
		From(s.builder().Table(clientsTable)).
		Where(where).
		OrderBy("name", "id")
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, s.drv, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("store: query clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// deleteOwned removes a row by id, scoped to its owner.
func (s *Store) deleteOwned(ctx context.Context, table string, owner, id uuid.UUID) error {
	del := s.builder().
		Delete(table).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", owner)))
	stmt, args := del.Query()
	n, err := execStmt(ctx, s.drv, stmt, args)
	if err != nil {
		return fmt.Errorf("store: delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
