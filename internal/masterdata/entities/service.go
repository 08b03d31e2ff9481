package entities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service coordinates entity master data.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// UpsertInput describes entity fields.
type UpsertInput struct {
	Name    string
	Kind    Kind
	Email   string
	Phone   string
	Address string
	Notes   string
}

func (in UpsertInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if !validKind(in.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, in.Kind)
	}
	return nil
}

// Create registers a new entity.
func (s *Service) Create(ctx context.Context, input UpsertInput) (Entity, error) {
	if err := input.validate(); err != nil {
		return Entity{}, err
	}
	now := s.now().UTC()
	entity := Entity{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Kind:      input.Kind,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, entity); err != nil {
		return Entity{}, err
	}
	return entity, nil
}

// Get returns one entity.
func (s *Service) Get(ctx context.Context, id string) (Entity, error) {
	return s.repo.Get(ctx, id)
}

// List returns entities, optionally filtered by a name search.
func (s *Service) List(ctx context.Context, search string) ([]Entity, error) {
	return s.repo.List(ctx, search)
}

// Update replaces entity fields.
func (s *Service) Update(ctx context.Context, id string, input UpsertInput) (Entity, error) {
	if err := input.validate(); err != nil {
		return Entity{}, err
	}
	entity, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entity{}, err
	}
	entity.Name = input.Name
	entity.Kind = input.Kind
	entity.Email = input.Email
	entity.Phone = input.Phone
	entity.Address = input.Address
	entity.Notes = input.Notes
	entity.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, entity); err != nil {
		return Entity{}, err
	}
	return entity, nil
}
