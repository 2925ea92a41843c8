package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventlisting/internal/delivery/http/helpers"
	"eventlisting/internal/delivery/http/middleware"
	"eventlisting/internal/domain"
)

type RSVPController struct {
	Logger    *slog.Logger
	Admission domain.AdmissionService
}

func NewRSVPController(logger *slog.Logger, admission domain.AdmissionService) *RSVPController {
	return &RSVPController{
		Logger:    logger,
		Admission: admission,
	}
}

// Join godoc
// @Summary RSVP to an event
// @Description Adds the authenticated user as an attendee. Fails if the user already RSVPed or the event is at capacity. Retrying after a timeout is safe.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event after the RSVP"
// @Failure 400 {object} helpers.APIResponse "already RSVPed or event is full"
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	event, err := c.Admission.Join(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, domain.ErrAlreadyJoined):
			helpers.WriteError(w, http.StatusBadRequest, "you have already RSVPed to this event")
		case errors.Is(err, domain.ErrCapacityFull):
			helpers.WriteError(w, http.StatusBadRequest, "event is at full capacity")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, event)
}

// Leave godoc
// @Summary Cancel an RSVP
// @Description Removes the authenticated user from the attendee list.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event after the cancellation"
// @Failure 400 {object} helpers.APIResponse "not attending"
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	event, err := c.Admission.Leave(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, domain.ErrNotAttending):
			helpers.WriteError(w, http.StatusBadRequest, "you have not RSVPed to this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, event)
}
