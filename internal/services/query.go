package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventlisting/internal/domain"
)

type queryService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewQueryService creates the read-only query service.
func NewQueryService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventQueryService {
	return &queryService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *queryService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *queryService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *queryService) ListMyEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *queryService) ListMyRSVPs(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByAttendee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by attendee: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
