package app

import (
	"context"
	"strings"
	"time"

	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/domain"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, e domain.Event) error
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	GetEventForUpdate(ctx context.Context, id string) (domain.Event, error)
	UpdateEvent(ctx context.Context, e domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	Publish(ctx context.Context, id string, at time.Time) (domain.Event, error)
	Availability(ctx context.Context, id string) (domain.Availability, error)
	AdjustSeats(ctx context.Context, id string, delta int) (domain.Availability, error)
	ListEvents(ctx context.Context, publishedOnly bool) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	SearchEvents(ctx context.Context, s domain.EventSearch, now time.Time) ([]domain.Event, error)
}

// EventService owns the event catalog and its seat counters.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
	opts  options
}

func NewEventService(repo EventRepository, clk clock.Clock, opts ...Option) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
		opts:  buildOptions(opts),
	}
}

func (s *EventService) CreateEvent(ctx context.Context, def domain.EventDefinition) (domain.Event, error) {
	if err := def.Validate(); err != nil {
		return domain.Event{}, err
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	event := domain.NewEvent(newID(), def, s.clock.Now())
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	if id == "" {
		return domain.Event{}, domain.ErrEventIDRequired
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.GetEvent(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, publishedOnly bool) ([]domain.Event, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListEvents(ctx, publishedOnly)
}

func (s *EventService) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListByOrganizer(ctx, organizerID)
}

func (s *EventService) SearchEvents(ctx context.Context, search domain.EventSearch) ([]domain.Event, error) {
	search.Title = strings.TrimSpace(search.Title)
	search.Category = strings.TrimSpace(search.Category)
	search.VenueID = strings.TrimSpace(search.VenueID)

	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.SearchEvents(ctx, search, s.clock.Now())
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrEventIDRequired
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.DeleteEvent(ctx, id)
}

// GetAvailability returns the seat counters of an event.
func (s *EventService) GetAvailability(ctx context.Context, eventID string) (domain.Availability, error) {
	if eventID == "" {
		return domain.Availability{}, domain.ErrEventIDRequired
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.Availability(ctx, eventID)
}

// AdjustSeats consumes delta seats, or restores them when delta is negative.
// It fails with domain.ErrNotEnoughSeats rather than letting availability go
// below zero. The check and the write are one storage operation.
func (s *EventService) AdjustSeats(ctx context.Context, eventID string, delta int) (domain.Availability, error) {
	if eventID == "" {
		return domain.Availability{}, domain.ErrEventIDRequired
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.AdjustSeats(ctx, eventID, delta)
}

// Publish marks the event visible for sale. Publishing again is a no-op.
func (s *EventService) Publish(ctx context.Context, eventID string) (domain.Event, error) {
	if eventID == "" {
		return domain.Event{}, domain.ErrEventIDRequired
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.Publish(ctx, eventID, s.clock.Now())
}

// UpdateDefinition replaces the event's mutable fields while keeping sold
// seats sold.
func (s *EventService) UpdateDefinition(ctx context.Context, eventID string, def domain.EventDefinition) (domain.Event, error) {
	if eventID == "" {
		return domain.Event{}, domain.ErrEventIDRequired
	}
	if err := def.Validate(); err != nil {
		return domain.Event{}, err
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	var updated domain.Event
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		event.Redefine(def, s.clock.Now())
		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return updated, nil
}
