package vehicles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service coordinates vehicle master data.
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

// UpsertInput describes vehicle fields.
type UpsertInput struct {
	OwnerID      string
	Year         int
	Make         string
	Model        string
	VIN          string
	LicensePlate string
	Color        string
	Mileage      int
}

func (in UpsertInput) validate() error {
	if strings.TrimSpace(in.OwnerID) == "" {
		return fmt.Errorf("%w: owner required", ErrValidation)
	}
	if strings.TrimSpace(in.Make) == "" || strings.TrimSpace(in.Model) == "" {
		return fmt.Errorf("%w: make and model required", ErrValidation)
	}
	if in.Mileage < 0 {
		return fmt.Errorf("%w: mileage must be non-negative", ErrValidation)
	}
	return nil
}

// Create registers a new vehicle.
func (s *Service) Create(ctx context.Context, input UpsertInput) (Vehicle, error) {
	if err := input.validate(); err != nil {
		return Vehicle{}, err
	}
	now := s.now().UTC()
	vehicle := Vehicle{
		ID:           uuid.NewString(),
		OwnerID:      input.OwnerID,
		Year:         input.Year,
		Make:         input.Make,
		Model:        input.Model,
		VIN:          input.VIN,
		LicensePlate: input.LicensePlate,
		Color:        input.Color,
		Mileage:      input.Mileage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, vehicle); err != nil {
		return Vehicle{}, err
	}
	return vehicle, nil
}

// Get returns one vehicle.
func (s *Service) Get(ctx context.Context, id string) (Vehicle, error) {
	return s.repo.Get(ctx, id)
}

// List returns vehicles, optionally filtered to one owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]Vehicle, error) {
	return s.repo.List(ctx, ownerID)
}

// Update replaces vehicle fields.
func (s *Service) Update(ctx context.Context, id string, input UpsertInput) (Vehicle, error) {
	if err := input.validate(); err != nil {
		return Vehicle{}, err
	}
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	vehicle.OwnerID = input.OwnerID
	vehicle.Year = input.Year
	vehicle.Make = input.Make
	vehicle.Model = input.Model
	vehicle.VIN = input.VIN
	vehicle.LicensePlate = input.LicensePlate
	vehicle.Color = input.Color
	vehicle.Mileage = input.Mileage
	vehicle.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return Vehicle{}, err
	}
	return vehicle, nil
}
