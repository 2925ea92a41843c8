package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventlisting/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	assets         domain.AssetStore
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates the lifecycle service (create/update/delete).
func NewEventService(eventRepo domain.EventRepository, assets domain.AssetStore, logger *slog.Logger, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		assets:         assets,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

func validateEventFields(title, description, location string) []string {
	var errs []string
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "title is required")
	} else if len(title) > domain.MaxTitleLen {
		errs = append(errs, fmt.Sprintf("title cannot exceed %d characters", domain.MaxTitleLen))
	}
	if strings.TrimSpace(description) == "" {
		errs = append(errs, "description is required")
	} else if len(description) > domain.MaxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description cannot exceed %d characters", domain.MaxDescriptionLen))
	}
	if strings.TrimSpace(location) == "" {
		errs = append(errs, "location is required")
	} else if len(location) > domain.MaxLocationLen {
		errs = append(errs, fmt.Sprintf("location cannot exceed %d characters", domain.MaxLocationLen))
	}
	return errs
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, input domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, validationError("organizer is required")
	}
	if len(input.Image) == 0 {
		return nil, validationError("please upload an image")
	}
	if errs := validateEventFields(input.Title, input.Description, input.Location); len(errs) > 0 {
		return nil, validationError(strings.Join(errs, "; "))
	}
	if input.Date.IsZero() {
		return nil, validationError("date is required")
	}
	// "Date must be in the future" applies at creation only; updates do not
	// re-check it.
	if !input.Date.After(s.now()) {
		return nil, validationError("date must be in the future")
	}
	if input.Capacity < 1 {
		return nil, validationError("capacity must be at least 1")
	}

	// Store the asset first so the document never references an image that
	// was not durably stored.
	asset, err := s.assets.Store(ctx, input.Image, input.ImageType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	event := domain.NewEvent(
		strings.TrimSpace(input.Title),
		input.Description,
		strings.TrimSpace(input.Location),
		input.Date,
		input.Capacity,
		domain.ParseCategory(input.Category),
		organizerID,
		s.now(),
	)
	event.Image = asset.URL
	event.ImageAssetID = asset.AssetID

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if delErr := s.assets.Delete(ctx, asset.AssetID); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned image asset",
				"asset_id", asset.AssetID, "err", delErr)
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, input domain.UpdateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Fresh read: the capacity-shrink guard below must compare against the
	// current attendee count, not a stale copy.
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}

	var errs []string
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			errs = append(errs, "title cannot be empty")
		} else if len(*input.Title) > domain.MaxTitleLen {
			errs = append(errs, fmt.Sprintf("title cannot exceed %d characters", domain.MaxTitleLen))
		}
	}
	if input.Description != nil && len(*input.Description) > domain.MaxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description cannot exceed %d characters", domain.MaxDescriptionLen))
	}
	if input.Location != nil && len(*input.Location) > domain.MaxLocationLen {
		errs = append(errs, fmt.Sprintf("location cannot exceed %d characters", domain.MaxLocationLen))
	}
	if len(errs) > 0 {
		return nil, validationError(strings.Join(errs, "; "))
	}
	if input.Capacity != nil {
		if *input.Capacity < 1 {
			return nil, validationError("capacity must be at least 1")
		}
		if *input.Capacity < event.AttendeeCount {
			return nil, validationError(fmt.Sprintf(
				"cannot reduce capacity below current attendee count (%d)", event.AttendeeCount))
		}
	}

	upd := domain.EventUpdate{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		Location:    input.Location,
		Capacity:    input.Capacity,
	}
	if input.Category != nil {
		cat := domain.ParseCategory(*input.Category)
		upd.Category = &cat
	}

	// When replacing the image, store the new asset before touching the old
	// one: a failed upload must not leave the event without a valid image.
	var newAsset *domain.StoredAsset
	if len(input.Image) > 0 {
		newAsset, err = s.assets.Store(ctx, input.Image, input.ImageType)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		upd.Image = &newAsset.URL
		upd.ImageAssetID = &newAsset.AssetID
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if newAsset != nil {
			if delErr := s.assets.Delete(ctx, newAsset.AssetID); delErr != nil {
				s.logger.WarnContext(ctx, "failed to delete orphaned image asset",
					"asset_id", newAsset.AssetID, "err", delErr)
			}
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	// A stale old asset is an acceptable leak; deletion failure is logged,
	// never surfaced.
	if newAsset != nil && event.ImageAssetID != "" {
		if delErr := s.assets.Delete(ctx, event.ImageAssetID); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced image asset",
				"event_id", eventID, "asset_id", event.ImageAssetID, "err", delErr)
		}
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return domain.ErrForbidden
	}

	// Document deletion must not be blocked by asset-store unavailability.
	if event.ImageAssetID != "" {
		if delErr := s.assets.Delete(ctx, event.ImageAssetID); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete image asset",
				"event_id", eventID, "asset_id", event.ImageAssetID, "err", delErr)
		}
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
