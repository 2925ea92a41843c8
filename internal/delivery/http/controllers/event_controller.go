package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventlisting/internal/delivery/http/helpers"
	"eventlisting/internal/delivery/http/middleware"
	"eventlisting/internal/domain"
)

// maxUploadBytes is the cap on event image uploads.
const maxUploadBytes = 5 << 20

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// dateFormats are the accepted layouts for event dates in forms and query
// params, tried in order.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateFormats {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// userMessage strips the sentinel prefix from a validation error so the
// client sees only the human-readable part.
func userMessage(err error) string {
	msg := err.Error()
	if after, ok := strings.CutPrefix(msg, domain.ErrValidation.Error()+": "); ok {
		return after
	}
	return msg
}

type EventController struct {
	Logger *slog.Logger
	Events domain.EventService
	Query  domain.EventQueryService
}

func NewEventController(logger *slog.Logger, events domain.EventService, query domain.EventQueryService) *EventController {
	return &EventController{
		Logger: logger,
		Events: events,
		Query:  query,
	}
}

func (c *EventController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteError(w, http.StatusInternalServerError, "something went wrong")
}

// eventIDFromPath extracts and validates the eventID path value. On failure
// it writes a 400 envelope and returns false.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("eventID")
	if !uuidRegex.MatchString(id) {
		helpers.WriteError(w, http.StatusBadRequest, "invalid event ID")
		return "", false
	}
	return id, true
}

// List godoc
// @Summary List events
// @Description Returns a paginated list of events. By default only upcoming events are returned; pass startDate and/or endDate to override.
// @Tags events
// @Produce json
// @Param search query string false "Case-insensitive match against title and description"
// @Param category query string false "Filter by category" Enums(conference, workshop, meetup, seminar, webinar, other)
// @Param startDate query string false "Earliest event date (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Latest event date (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page number, starting at 1" default(1)
// @Param limit query int false "Page size, max 100" default(10)
// @Success 200 {object} helpers.APIResponse "data contains the events, pagination contains page metadata"
// @Failure 400 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter domain.EventFilter
	filter.Search = strings.TrimSpace(q.Get("search"))
	if cat := strings.TrimSpace(q.Get("category")); cat != "" && cat != "all" {
		filter.Category = domain.ParseCategory(cat)
	}
	if s := q.Get("startDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			helpers.WriteError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		filter.StartDate = &t
	}
	if s := q.Get("endDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			helpers.WriteError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		filter.EndDate = &t
	}

	params := helpers.ParsePagination(r)
	events, total, err := c.Query.ListEvents(r.Context(), filter, params)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	helpers.WritePage(w, events, helpers.NewPaginationMeta(params.Page, params.Limit, total))
}

// Get godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	event, err := c.Query.GetEventByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteError(w, http.StatusNotFound, "event not found")
			return
		}
		c.internalError(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, event)
}

// Create godoc
// @Summary Create an event
// @Description Creates an event from a multipart form. The image file field is required; uploads are capped at 5 MB.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Event title"
// @Param description formData string true "Event description"
// @Param date formData string true "Event date (RFC3339 or YYYY-MM-DD), must be in the future"
// @Param location formData string true "Event location"
// @Param capacity formData int true "Maximum number of attendees, at least 1"
// @Param category formData string false "Event category; unrecognized values become 'other'"
// @Param image formData file true "Event image (jpeg, png, gif, or webp)"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	input, ok := c.parseEventForm(w, r, true)
	if !ok {
		return
	}

	created := domain.CreateEventInput{
		Title:       deref(input.Title),
		Description: deref(input.Description),
		Location:    deref(input.Location),
		Category:    deref(input.Category),
		Image:       input.Image,
		ImageType:   input.ImageType,
	}
	if input.Date != nil {
		created.Date = *input.Date
	}
	if input.Capacity != nil {
		created.Capacity = *input.Capacity
	}

	event, err := c.Events.CreateEvent(r.Context(), userID, created)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			helpers.WriteError(w, http.StatusBadRequest, userMessage(err))
			return
		}
		c.internalError(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusCreated, event)
}

// Update godoc
// @Summary Update an event
// @Description Partially updates an event from a multipart form. Only the organizer may update. Omitted fields are left unchanged. A new image replaces the old one.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param title formData string false "Event title"
// @Param description formData string false "Event description"
// @Param date formData string false "Event date (RFC3339 or YYYY-MM-DD)"
// @Param location formData string false "Event location"
// @Param capacity formData int false "Maximum number of attendees; cannot shrink below the current attendee count"
// @Param category formData string false "Event category"
// @Param image formData file false "Replacement event image"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	input, ok := c.parseEventForm(w, r, false)
	if !ok {
		return
	}

	event, err := c.Events.UpdateEvent(r.Context(), id, userID, *input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteError(w, http.StatusForbidden, "only the organizer can update this event")
		case errors.Is(err, domain.ErrValidation):
			helpers.WriteError(w, http.StatusBadRequest, userMessage(err))
		default:
			c.internalError(w, r, err)
		}
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Deletes an event and its stored image. Only the organizer may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	if err := c.Events.DeleteEvent(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteError(w, http.StatusForbidden, "only the organizer can delete this event")
		default:
			c.internalError(w, r, err)
		}
		return
	}
	helpers.WriteSuccessMessage(w, http.StatusOK, nil, "event deleted")
}

// MyEvents godoc
// @Summary List events organized by the authenticated user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/user/my-events [get]
func (c *EventController) MyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	events, err := c.Query.ListMyEvents(r.Context(), userID)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, events)
}

// MyRSVPs godoc
// @Summary List events the authenticated user has RSVPed to
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/user/my-rsvps [get]
func (c *EventController) MyRSVPs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	events, err := c.Query.ListMyRSVPs(r.Context(), userID)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, events)
}

// parseEventForm reads the multipart form shared by Create and Update. When
// requireImage is false, fields absent from the form stay nil so callers can
// distinguish "not provided" from zero values. On failure it writes a 400
// envelope and returns false.
func (c *EventController) parseEventForm(w http.ResponseWriter, r *http.Request, requireImage bool) (*domain.UpdateEventInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, "could not parse form; uploads are limited to 5 MB")
		return nil, false
	}

	var input domain.UpdateEventInput
	if v, ok := formValue(r, "title"); ok {
		input.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(r, "location"); ok {
		input.Location = &v
	}
	if v, ok := formValue(r, "category"); ok {
		input.Category = &v
	}
	if v, ok := formValue(r, "date"); ok {
		t, err := parseDate(v)
		if err != nil {
			helpers.WriteError(w, http.StatusBadRequest, "invalid date format")
			return nil, false
		}
		input.Date = &t
	}
	if v, ok := formValue(r, "capacity"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			helpers.WriteError(w, http.StatusBadRequest, "capacity must be a number")
			return nil, false
		}
		input.Capacity = &n
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			helpers.WriteError(w, http.StatusBadRequest, "could not read uploaded image")
			return nil, false
		}
		input.Image = data
		input.ImageType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		if requireImage {
			helpers.WriteError(w, http.StatusBadRequest, "please upload an image")
			return nil, false
		}
	default:
		helpers.WriteError(w, http.StatusBadRequest, "could not read uploaded image")
		return nil, false
	}

	return &input, true
}

// formValue reports whether the multipart form contains the key, returning
// the first value when present. An empty string counts as provided.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
