package domain

import (
	"context"
	"time"
)

// Category is the closed set of event categories. Unrecognized values fall
// back to CategoryOther rather than failing.
type Category string

const (
	CategoryConference Category = "conference"
	CategoryWorkshop   Category = "workshop"
	CategoryMeetup     Category = "meetup"
	CategorySeminar    Category = "seminar"
	CategoryWebinar    Category = "webinar"
	CategoryOther      Category = "other"
)

// ParseCategory maps a raw string to a Category, defaulting to CategoryOther.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryConference, CategoryWorkshop, CategoryMeetup, CategorySeminar, CategoryWebinar:
		return Category(s)
	default:
		return CategoryOther
	}
}

// Field length bounds for event text fields.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 2000
	MaxLocationLen    = 200
)

// Event is the root aggregate. AttendeeCount must equal len(Attendees) in
// every committed row; the admission path preserves that under concurrency
// by mutating both in a single conditional update.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	Capacity      int       `json:"capacity"`
	Category      Category  `json:"category"`
	Image         string    `json:"image"`
	ImageAssetID  string    `json:"-"`
	OrganizerID   string    `json:"organizer_id"`
	Attendees     []string  `json:"attendees"`
	AttendeeCount int       `json:"attendee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with zero attendees. ID is set by the
// repository on create.
func NewEvent(title, description, location string, date time.Time, capacity int, category Category, organizerID string, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		Date:        date,
		Capacity:    capacity,
		Category:    category,
		OrganizerID: organizerID,
		Attendees:   []string{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EventFilter narrows event listings. Zero values mean "no constraint".
// When both StartDate and EndDate are nil the listing defaults to upcoming
// events only (date >= now).
type EventFilter struct {
	Search    string
	Category  Category
	StartDate *time.Time
	EndDate   *time.Time
}

// EventUpdate carries a partial update for an event row. Nil fields are
// unchanged. OrganizerID and attendee state are never updatable through
// this path.
type EventUpdate struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Location     *string
	Capacity     *int
	Category     *Category
	Image        *string
	ImageAssetID *string
}

// EventRepository defines the interface for event storage.
//
// AddAttendee and RemoveAttendee are conditional atomic updates: the
// existence, membership, and capacity predicates are evaluated by the store
// against the current row in the same indivisible operation as the
// mutation. When no row matches they return ErrConditionFailed without
// saying why; classification is the caller's problem.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	ListByAttendee(ctx context.Context, userID string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
	AddAttendee(ctx context.Context, eventID, userID string) (*Event, error)
	RemoveAttendee(ctx context.Context, eventID, userID string) (*Event, error)
}

// CreateEventInput is the input for EventService.CreateEvent.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
	Category    string
	Image       []byte
	ImageType   string
}

// UpdateEventInput is the input for EventService.UpdateEvent. Nil fields
// are unchanged; non-empty Image replaces the stored asset.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Capacity    *int
	Category    *string
	Image       []byte
	ImageType   string
}

// EventService defines the event lifecycle: create, update, delete.
type EventService interface {
	// CreateEvent stores the image first, then creates the event referencing
	// the returned URL. Image bytes are required.
	CreateEvent(ctx context.Context, organizerID string, input CreateEventInput) (*Event, error)
	// UpdateEvent applies a partial update. Only the organizer may update.
	// Shrinking capacity below the current attendee count is rejected.
	UpdateEvent(ctx context.Context, eventID, callerID string, input UpdateEventInput) (*Event, error)
	// DeleteEvent removes the event and its image asset. Only the organizer
	// may delete. Asset-store failures are logged, never surfaced.
	DeleteEvent(ctx context.Context, eventID, callerID string) error
}

// AdmissionService toggles a user's attendance on an event with
// exactly-once semantics per direction. All capacity accounting happens in
// the store's conditional update; there is no application-level locking.
type AdmissionService interface {
	// Join adds the user as an attendee if the event exists, the user is not
	// already attending, and there is capacity. Returns the post-update
	// event. Safely retriable: a retry after an ambiguous timeout yields
	// ErrAlreadyJoined when the first attempt actually landed.
	Join(ctx context.Context, eventID, userID string) (*Event, error)
	// Leave removes the user if currently attending. Returns the post-update
	// event. Never drives the attendee count below zero.
	Leave(ctx context.Context, eventID, userID string) (*Event, error)
}

// EventQueryService covers the read paths: listing with search and filters,
// fetch by id, and the per-user dashboards.
type EventQueryService interface {
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListMyEvents(ctx context.Context, organizerID string) ([]*Event, error)
	ListMyRSVPs(ctx context.Context, userID string) ([]*Event, error)
}
