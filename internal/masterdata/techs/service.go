package techs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service coordinates technician master data. It also backs the tech
// directory used by repair order assignment.
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

// CreateInput describes a new technician.
type CreateInput struct {
	Name           string
	Specialties    []string
	Certifications []string
	HourlyRate     decimal.Decimal
}

// Create registers a new technician, available by default.
func (s *Service) Create(ctx context.Context, input CreateInput) (Tech, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Tech{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if input.HourlyRate.IsNegative() {
		return Tech{}, fmt.Errorf("%w: hourly rate must be non-negative", ErrValidation)
	}
	now := s.now().UTC()
	tech := Tech{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Specialties:    input.Specialties,
		Certifications: input.Certifications,
		Availability:   AvailabilityAvailable,
		HourlyRate:     input.HourlyRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, tech); err != nil {
		return Tech{}, err
	}
	return tech, nil
}

// Get returns one technician.
func (s *Service) Get(ctx context.Context, id string) (Tech, error) {
	return s.repo.Get(ctx, id)
}

// List returns all technicians.
func (s *Service) List(ctx context.Context) ([]Tech, error) {
	return s.repo.List(ctx)
}

// SetAvailability updates the technician's availability state.
func (s *Service) SetAvailability(ctx context.Context, id string, availability Availability) (Tech, error) {
	if !validAvailability(availability) {
		return Tech{}, fmt.Errorf("%w: unknown availability %q", ErrValidation, availability)
	}
	tech, err := s.repo.Get(ctx, id)
	if err != nil {
		return Tech{}, err
	}
	tech.Availability = availability
	tech.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, tech); err != nil {
		return Tech{}, err
	}
	return tech, nil
}

// Exists reports whether the technician id is known.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}
