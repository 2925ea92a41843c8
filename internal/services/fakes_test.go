package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"eventlisting/internal/domain"
)

// testLogger discards output so tests don't assert on log lines.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 2 * time.Second

// fakeEventRepo is an in-memory EventRepository whose AddAttendee and
// RemoveAttendee reproduce the store's conditional-update contract: the
// predicates and the mutation execute under one lock, indivisibly, and the
// capacity invariant is re-checked after every commit.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int

	err    error // if set, every write returns this error
	getErr error // if set, GetByID returns this error

	invariantViolations []string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Attendees = append([]string{}, e.Attendees...)
	return &c
}

// checkInvariant records a violation of 0 <= count == |attendees| <= capacity.
// Called after every committed mutation, with the lock held.
func (f *fakeEventRepo) checkInvariant(e *domain.Event) {
	if e.AttendeeCount < 0 || e.AttendeeCount > e.Capacity || e.AttendeeCount != len(e.Attendees) {
		f.invariantViolations = append(f.invariantViolations, fmt.Sprintf(
			"event %s: count=%d attendees=%d capacity=%d", e.ID, e.AttendeeCount, len(e.Attendees), e.Capacity))
	}
	seen := make(map[string]struct{}, len(e.Attendees))
	for _, a := range e.Attendees {
		if _, dup := seen[a]; dup {
			f.invariantViolations = append(f.invariantViolations, fmt.Sprintf("event %s: duplicate attendee %s", e.ID, a))
		}
		seen[a] = struct{}{}
	}
}

func (f *fakeEventRepo) violations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.invariantViolations...)
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = cloneEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		return cloneEvent(e), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var matched []*domain.Event
	for _, e := range f.byID {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(e.Description), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		matched = append(matched, cloneEvent(e))
	}
	total := len(matched)
	// Sort by date ASC to match the repository contract.
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].Date.Before(matched[i].Date) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	off := params.Offset()
	if off > len(matched) {
		off = len(matched)
	}
	end := off + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[off:end], total, nil
}

func (f *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByAttendee(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.byID {
		for _, a := range e.Attendees {
			if a == userID {
				out = append(out, cloneEvent(e))
				break
			}
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Capacity != nil {
		e.Capacity = *upd.Capacity
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Image != nil {
		e.Image = *upd.Image
	}
	if upd.ImageAssetID != nil {
		e.ImageAssetID = *upd.ImageAssetID
	}
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) AddAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrConditionFailed
	}
	for _, a := range e.Attendees {
		if a == userID {
			return nil, domain.ErrConditionFailed
		}
	}
	if e.AttendeeCount >= e.Capacity {
		return nil, domain.ErrConditionFailed
	}
	e.Attendees = append(e.Attendees, userID)
	e.AttendeeCount++
	e.UpdatedAt = time.Now()
	f.checkInvariant(e)
	return cloneEvent(e), nil
}

func (f *fakeEventRepo) RemoveAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrConditionFailed
	}
	idx := -1
	for i, a := range e.Attendees {
		if a == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrConditionFailed
	}
	e.Attendees = append(e.Attendees[:idx], e.Attendees[idx+1:]...)
	e.AttendeeCount--
	e.UpdatedAt = time.Now()
	f.checkInvariant(e)
	return cloneEvent(e), nil
}

// seedEvent inserts an event directly, bypassing validation.
func (f *fakeEventRepo) seedEvent(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	f.byID[e.ID] = cloneEvent(e)
	return e
}

// fakeAssetStore records stored and deleted assets and can be told to fail.
type fakeAssetStore struct {
	mu        sync.Mutex
	stored    []string
	deleted   []string
	storeErr  error
	deleteErr error
	nextID    int
}

func (f *fakeAssetStore) Store(ctx context.Context, data []byte, contentType string) (*domain.StoredAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	f.nextID++
	id := fmt.Sprintf("asset-%d", f.nextID)
	f.stored = append(f.stored, id)
	return &domain.StoredAsset{URL: "https://assets.example.com/" + id, AssetID: id}, nil
}

func (f *fakeAssetStore) Delete(ctx context.Context, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, assetID)
	return f.deleteErr
}
