package controllers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"eventlisting/internal/delivery/http/middleware"
	"eventlisting/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent(id string) *domain.Event {
	return &domain.Event{
		ID:            id,
		Title:         "Go Meetup",
		Description:   "Monthly Go meetup",
		Date:          time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second),
		Location:      "Community Hall",
		Capacity:      50,
		Category:      domain.CategoryMeetup,
		Image:         "https://assets.example.com/event-images/x.png",
		OrganizerID:   "org-1",
		Attendees:     []string{},
		AttendeeCount: 0,
	}
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr  error
	updateErr  error
	deleteErr  error
	lastCreate domain.CreateEventInput
	lastUpdate domain.UpdateEventInput
	lastCaller string
	lastEvent  string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, organizerID string, input domain.CreateEventInput) (*domain.Event, error) {
	f.lastCaller = organizerID
	f.lastCreate = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	ev := sampleEvent("ev-created")
	ev.Title = input.Title
	ev.OrganizerID = organizerID
	return ev, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, callerID string, input domain.UpdateEventInput) (*domain.Event, error) {
	f.lastEvent = eventID
	f.lastCaller = callerID
	f.lastUpdate = input
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	ev := sampleEvent(eventID)
	if input.Title != nil {
		ev.Title = *input.Title
	}
	return ev, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	f.lastEvent = eventID
	f.lastCaller = callerID
	return f.deleteErr
}

// fakeQueryService implements domain.EventQueryService for handler tests.
type fakeQueryService struct {
	events     []*domain.Event
	total      int
	err        error
	lastFilter domain.EventFilter
	lastParams domain.PaginationParams
	lastUserID string
}

func (f *fakeQueryService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	f.lastParams = params
	return f.events, f.total, f.err
}

func (f *fakeQueryService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return sampleEvent(eventID), nil
}

func (f *fakeQueryService) ListMyEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.lastUserID = organizerID
	return f.events, f.err
}

func (f *fakeQueryService) ListMyRSVPs(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.lastUserID = userID
	return f.events, f.err
}

// fakeAdmissionService implements domain.AdmissionService for handler tests.
type fakeAdmissionService struct {
	joinErr    error
	leaveErr   error
	lastEvent  string
	lastUserID string
}

func (f *fakeAdmissionService) Join(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	f.lastEvent = eventID
	f.lastUserID = userID
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	ev := sampleEvent(eventID)
	ev.Attendees = []string{userID}
	ev.AttendeeCount = 1
	return ev, nil
}

func (f *fakeAdmissionService) Leave(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	f.lastEvent = eventID
	f.lastUserID = userID
	if f.leaveErr != nil {
		return nil, f.leaveErr
	}
	return sampleEvent(eventID), nil
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr error
	loginErr  error
	token     string
	lastEmail string
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	f.lastEmail = email
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: "u-1", Email: email, Name: name}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, &domain.User{ID: "u-1", Email: email}, nil
}

// authedRequest builds a request carrying an authenticated user ID and,
// when eventID is non-empty, the eventID path value.
func authedRequest(method, target, userID, eventID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	if eventID != "" {
		req.SetPathValue("eventID", eventID)
	}
	return req
}

// multipartBody builds a multipart form with the given fields and an
// optional PNG image part.
func multipartBody(fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if withImage {
		part, _ := w.CreateFormFile("image", "event.png")
		_, _ = part.Write([]byte("\x89PNG fake image bytes"))
	}
	_ = w.Close()
	return buf, w.FormDataContentType()
}
