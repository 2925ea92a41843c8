package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventlisting/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

func newEventController(events *fakeEventService, query *fakeQueryService) *EventController {
	return NewEventController(testLogger(), events, query)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func TestEventController_List(t *testing.T) {
	t.Run("success with pagination meta", func(t *testing.T) {
		query := &fakeQueryService{
			events: []*domain.Event{sampleEvent(testEventID)},
			total:  42,
		}
		ctrl := newEventController(&fakeEventService{}, query)
		req := httptest.NewRequest(http.MethodGet, "/events?page=2&limit=20", nil)
		rr := httptest.NewRecorder()

		ctrl.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		out := decodeEnvelope(t, rr)
		assert.Equal(t, true, out["success"])
		pagination, ok := out["pagination"].(map[string]any)
		require.True(t, ok, "pagination present")
		assert.Equal(t, float64(2), pagination["page"])
		assert.Equal(t, float64(20), pagination["limit"])
		assert.Equal(t, float64(42), pagination["total"])
		assert.Equal(t, float64(3), pagination["pages"])
		assert.Equal(t, 2, query.lastParams.Page)
		assert.Equal(t, 20, query.lastParams.Limit)
	})

	t.Run("search and category flow into the filter", func(t *testing.T) {
		query := &fakeQueryService{}
		ctrl := newEventController(&fakeEventService{}, query)
		req := httptest.NewRequest(http.MethodGet, "/events?search=gophers&category=meetup", nil)
		rr := httptest.NewRecorder()

		ctrl.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "gophers", query.lastFilter.Search)
		assert.Equal(t, domain.CategoryMeetup, query.lastFilter.Category)
	})

	t.Run("category all means no category filter", func(t *testing.T) {
		query := &fakeQueryService{}
		ctrl := newEventController(&fakeEventService{}, query)
		req := httptest.NewRequest(http.MethodGet, "/events?category=all", nil)
		rr := httptest.NewRecorder()

		ctrl.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, query.lastFilter.Category)
	})

	t.Run("date range is parsed", func(t *testing.T) {
		query := &fakeQueryService{}
		ctrl := newEventController(&fakeEventService{}, query)
		req := httptest.NewRequest(http.MethodGet, "/events?startDate=2026-09-01&endDate=2026-09-30", nil)
		rr := httptest.NewRecorder()

		ctrl.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, query.lastFilter.StartDate)
		require.NotNil(t, query.lastFilter.EndDate)
		assert.Equal(t, "2026-09-01", query.lastFilter.StartDate.Format("2006-01-02"))
		assert.Equal(t, "2026-09-30", query.lastFilter.EndDate.Format("2006-01-02"))
	})

	t.Run("invalid startDate is a 400", func(t *testing.T) {
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{})
		req := httptest.NewRequest(http.MethodGet, "/events?startDate=next-tuesday", nil)
		rr := httptest.NewRecorder()

		ctrl.List(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid startDate")
	})

	t.Run("service error is a 500 with a generic message", func(t *testing.T) {
		query := &fakeQueryService{err: errors.New("db down")}
		ctrl := newEventController(&fakeEventService{}, query)
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		rr := httptest.NewRecorder()

		ctrl.List(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db down")
	})
}

func TestEventController_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{})
		req := authedRequest(http.MethodGet, "/events/"+testEventID, "", testEventID, nil)
		rr := httptest.NewRecorder()

		ctrl.Get(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), testEventID)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{})
		req := authedRequest(http.MethodGet, "/events/not-a-uuid", "", "not-a-uuid", nil)
		rr := httptest.NewRecorder()

		ctrl.Get(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid event ID")
	})

	t.Run("not found is a 404", func(t *testing.T) {
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{err: domain.ErrNotFound})
		req := authedRequest(http.MethodGet, "/events/"+testEventID, "", testEventID, nil)
		rr := httptest.NewRecorder()

		ctrl.Get(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestEventController_Create(t *testing.T) {
	validFields := map[string]string{
		"title":       "Go Meetup",
		"description": "Monthly Go meetup",
		"date":        "2027-01-15T18:00",
		"location":    "Community Hall",
		"capacity":    "50",
		"category":    "meetup",
	}

	t.Run("success", func(t *testing.T) {
		events := &fakeEventService{}
		ctrl := newEventController(events, &fakeQueryService{})
		body, contentType := multipartBody(validFields, true)
		req := authedRequest(http.MethodPost, "/events", "user-1", "", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "user-1", events.lastCaller)
		assert.Equal(t, "Go Meetup", events.lastCreate.Title)
		assert.Equal(t, 50, events.lastCreate.Capacity)
		assert.NotEmpty(t, events.lastCreate.Image)
	})

	t.Run("unauthenticated is a 401", func(t *testing.T) {
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{})
		body, contentType := multipartBody(validFields, true)
		req := authedRequest(http.MethodPost, "/events", "", "", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing image is a 400", func(t *testing.T) {
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{})
		body, contentType := multipartBody(validFields, false)
		req := authedRequest(http.MethodPost, "/events", "user-1", "", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "please upload an image")
	})

	t.Run("non-numeric capacity is a 400", func(t *testing.T) {
		fields := map[string]string{}
		for k, v := range validFields {
			fields[k] = v
		}
		fields["capacity"] = "lots"
		ctrl := newEventController(&fakeEventService{}, &fakeQueryService{})
		body, contentType := multipartBody(fields, true)
		req := authedRequest(http.MethodPost, "/events", "user-1", "", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "capacity must be a number")
	})

	t.Run("validation error from the service is a 400", func(t *testing.T) {
		events := &fakeEventService{createErr: domain.ErrValidation}
		ctrl := newEventController(events, &fakeQueryService{})
		body, contentType := multipartBody(validFields, true)
		req := authedRequest(http.MethodPost, "/events", "user-1", "", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventController_Update(t *testing.T) {
	t.Run("partial update sends only provided fields", func(t *testing.T) {
		events := &fakeEventService{}
		ctrl := newEventController(events, &fakeQueryService{})
		body, contentType := multipartBody(map[string]string{"title": "New Title"}, false)
		req := authedRequest(http.MethodPut, "/events/"+testEventID, "org-1", testEventID, body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Update(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, events.lastUpdate.Title)
		assert.Equal(t, "New Title", *events.lastUpdate.Title)
		assert.Nil(t, events.lastUpdate.Description)
		assert.Nil(t, events.lastUpdate.Capacity)
		assert.Empty(t, events.lastUpdate.Image)
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		events := &fakeEventService{updateErr: domain.ErrForbidden}
		ctrl := newEventController(events, &fakeQueryService{})
		body, contentType := multipartBody(map[string]string{"title": "x"}, false)
		req := authedRequest(http.MethodPut, "/events/"+testEventID, "intruder", testEventID, body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Update(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		events := &fakeEventService{updateErr: domain.ErrNotFound}
		ctrl := newEventController(events, &fakeQueryService{})
		body, contentType := multipartBody(map[string]string{"title": "x"}, false)
		req := authedRequest(http.MethodPut, "/events/"+testEventID, "org-1", testEventID, body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Update(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("new image is forwarded", func(t *testing.T) {
		events := &fakeEventService{}
		ctrl := newEventController(events, &fakeQueryService{})
		body, contentType := multipartBody(map[string]string{}, true)
		req := authedRequest(http.MethodPut, "/events/"+testEventID, "org-1", testEventID, body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		ctrl.Update(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, events.lastUpdate.Image)
	})
}

func TestEventController_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		events := &fakeEventService{}
		ctrl := newEventController(events, &fakeQueryService{})
		req := authedRequest(http.MethodDelete, "/events/"+testEventID, "org-1", testEventID, nil)
		rr := httptest.NewRecorder()

		ctrl.Delete(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testEventID, events.lastEvent)
		assert.Equal(t, "org-1", events.lastCaller)
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		events := &fakeEventService{deleteErr: domain.ErrForbidden}
		ctrl := newEventController(events, &fakeQueryService{})
		req := authedRequest(http.MethodDelete, "/events/"+testEventID, "intruder", testEventID, nil)
		rr := httptest.NewRecorder()

		ctrl.Delete(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestEventController_Dashboards(t *testing.T) {
	t.Run("my events", func(t *testing.T) {
		query := &fakeQueryService{events: []*domain.Event{sampleEvent(testEventID)}}
		ctrl := newEventController(&fakeEventService{}, query)
		req := authedRequest(http.MethodGet, "/events/user/my-events", "org-1", "", nil)
		rr := httptest.NewRecorder()

		ctrl.MyEvents(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "org-1", query.lastUserID)
		assert.Contains(t, rr.Body.String(), testEventID)
	})

	t.Run("my rsvps", func(t *testing.T) {
		query := &fakeQueryService{events: []*domain.Event{}}
		ctrl := newEventController(&fakeEventService{}, query)
		req := authedRequest(http.MethodGet, "/events/user/my-rsvps", "user-1", "", nil)
		rr := httptest.NewRecorder()

		ctrl.MyRSVPs(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-1", query.lastUserID)
	})
}
