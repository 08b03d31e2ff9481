package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, alert Alert) error
	Get(ctx context.Context, id string) (Alert, error)
	List(ctx context.Context, filter ListFilter) ([]Alert, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	HasUnreadFor(ctx context.Context, entityID string, entityType EntityType) (bool, error)
}

// ListFilter narrows alert listings.
type ListFilter struct {
	UnreadOnly bool
	EntityType EntityType
	Now        time.Time
}

// Service coordinates alert creation and read state.
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

// Raise stores a new alert.
func (s *Service) Raise(ctx context.Context, input CreateInput) (Alert, error) {
	if !validType(input.Type) {
		return Alert{}, fmt.Errorf("%w: unknown type %q", ErrValidation, input.Type)
	}
	if strings.TrimSpace(input.Title) == "" {
		return Alert{}, fmt.Errorf("%w: title required", ErrValidation)
	}
	alert := Alert{
		ID:         uuid.NewString(),
		Type:       input.Type,
		Title:      input.Title,
		Message:    input.Message,
		EntityID:   input.EntityID,
		EntityType: input.EntityType,
		CreatedAt:  s.now().UTC(),
		ExpiresAt:  input.ExpiresAt,
	}
	if err := s.repo.Insert(ctx, alert); err != nil {
		return Alert{}, err
	}
	return alert, nil
}

// List returns alerts, excluding expired ones.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Alert, error) {
	if filter.Now.IsZero() {
		filter.Now = s.now().UTC()
	}
	return s.repo.List(ctx, filter)
}

// MarkRead marks one alert as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every unread alert as read and returns the count.
func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

// HasUnreadFor reports whether an unread alert already references the
// entity. Background scans use it to stay idempotent.
func (s *Service) HasUnreadFor(ctx context.Context, entityID string, entityType EntityType) (bool, error) {
	return s.repo.HasUnreadFor(ctx, entityID, entityType)
}
