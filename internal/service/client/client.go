package client

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrNameRequired   = errors.New("name is required")
	ErrInvalidEmail   = errors.New("invalid email address")
)

type CreateRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

type Store interface {
	CreateClient(ctx context.Context, c *model.Client) error
	UpdateClient(ctx context.Context, c *model.Client) error
	GetClient(ctx context.Context, owner, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context, owner uuid.UUID) ([]model.Client, error)
	DeleteClient(ctx context.Context, owner, id uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Client, error)
	Update(ctx context.Context, owner, id uuid.UUID, req CreateRequest) (*model.Client, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, owner uuid.UUID) ([]model.Client, error)
	// Delete removes the client. Its jobs keep their history with no client.
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type clientService struct {
	db Store
}

func New(db Store) Service {
	return &clientService{db: db}
}

func (s *clientService) Create(ctx context.Context, owner uuid.UUID, req CreateRequest) (*model.Client, error) {
	c := &model.Client{OwnerID: owner}
	if err := apply(c, req); err != nil {
		return nil, err
	}
	if err := s.db.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) Update(ctx context.Context, owner, id uuid.UUID, req CreateRequest) (*model.Client, error) {
	c, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c, req); err != nil {
		return nil, err
	}
	if err := s.db.UpdateClient(ctx, c); err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *clientService) Get(ctx context.Context, owner, id uuid.UUID) (*model.Client, error) {
	c, err := s.db.GetClient(ctx, owner, id)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *clientService) List(ctx context.Context, owner uuid.UUID) ([]model.Client, error) {
	clients, err := s.db.ListClients(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if clients == nil {
		clients = []model.Client{}
	}
	return clients, nil
}

func (s *clientService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return notFound(s.db.DeleteClient(ctx, owner, id))
}

func apply(c *model.Client, req CreateRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrNameRequired
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return ErrInvalidEmail
		}
	}
	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(req.Phone)
	c.Address = strings.TrimSpace(req.Address)
	c.Notes = req.Notes
	return nil
}

func notFound(err error) error {
	if store.IsNotFound(err) {
		return ErrClientNotFound
	}
	return err
}
