package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventlisting/internal/domain"
)

type admissionService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewAdmissionService creates an AdmissionService backed by the given
// repository. All capacity accounting is delegated to the repository's
// conditional updates; this service holds no locks and no shared state.
func NewAdmissionService(eventRepo domain.EventRepository, timeout time.Duration) domain.AdmissionService {
	return &admissionService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *admissionService) Join(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.AddAttendee(ctx, eventID, userID)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, domain.ErrConditionFailed) {
		return nil, fmt.Errorf("add attendee: %w", err)
	}

	// The store already decided: no mutation happened. The read below only
	// picks the error to report and must never influence that decision.
	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("classify join failure: %w", err)
	}
	for _, a := range current.Attendees {
		if a == userID {
			return nil, domain.ErrAlreadyJoined
		}
	}
	return nil, domain.ErrCapacityFull
}

func (s *admissionService) Leave(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.RemoveAttendee(ctx, eventID, userID)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, domain.ErrConditionFailed) {
		return nil, fmt.Errorf("remove attendee: %w", err)
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("classify leave failure: %w", err)
	}
	return nil, domain.ErrNotAttending
}
