package controllers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// EventListResponse is the envelope for event listings.
type EventListResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Data    []*domain.Event `json:"data"`
}

// PublicEventListResponse is the envelope for the public listing.
type PublicEventListResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Data    []*domain.PublicEvent `json:"data"`
}

// EventResponse is the envelope for a single event.
type EventResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    *domain.Event `json:"data"`
}

// EventController serves the /events endpoints.
type EventController struct {
	Logger         *slog.Logger
	Service        domain.EventService
	Calendar       domain.CalendarEncoder
	MaxUploadBytes int64
}

// NewEventController creates an EventController. maxUploadBytes bounds the
// image part of multipart requests.
func NewEventController(logger *slog.Logger, svc domain.EventService, calendar domain.CalendarEncoder, maxUploadBytes int64) *EventController {
	return &EventController{
		Logger:         logger,
		Service:        svc,
		Calendar:       calendar,
		MaxUploadBytes: maxUploadBytes,
	}
}

// ListPublic godoc
// @Summary List public events
// @Description Public events sorted by start. Attendees are never included.
// @Tags events
// @Produce json
// @Param city query string false "Only events in this city"
// @Success 200 {object} controllers.PublicEventListResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /events/public [get]
func (c *EventController) ListPublic(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListPublicEvents(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONList(w, events)
}

// PublicCalendar godoc
// @Summary Public events as iCalendar
// @Description The public listing as a text/calendar feed for subscription. Recurring events carry an RRULE.
// @Tags events
// @Produce plain
// @Param city query string false "Only events in this city"
// @Success 200 {string} string "iCalendar document"
// @Failure 503 {object} helpers.APIResponse
// @Router /events/public/calendar.ics [get]
func (c *EventController) PublicCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListPublicEvents(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	var buf bytes.Buffer
	if err := c.Calendar.Encode(&buf, events); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	w.Header().Set("Content-Type", c.Calendar.ContentType())
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// List godoc
// @Summary List events
// @Description Events visible to the caller: admins see all, others see public events and their own. start and end filter on the event start and apply only when both are given.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param start query string false "Earliest start (inclusive)"
// @Param end query string false "Latest start (inclusive)"
// @Param type query string false "Event type"
// @Param status query string false "Event status"
// @Param city query string false "City"
// @Param public query bool false "Only public events"
// @Success 200 {object} controllers.EventListResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c.list(w, r, domain.EventFilter{
		DateStart:  q.Get("start"),
		DateEnd:    q.Get("end"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		City:       q.Get("city"),
		PublicOnly: strings.EqualFold(q.Get("public"), "true"),
	})
}

// ListRange godoc
// @Summary List events in a date range
// @Description Events visible to the caller whose start lies between start and end, both inclusive.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param start path string true "Earliest start"
// @Param end path string true "Latest start"
// @Success 200 {object} controllers.EventListResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Router /events/range/{start}/{end} [get]
func (c *EventController) ListRange(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, domain.EventFilter{
		DateStart: r.PathValue("start"),
		DateEnd:   r.PathValue("end"),
	})
}

func (c *EventController) list(w http.ResponseWriter, r *http.Request, filter domain.EventFilter) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	events, err := c.Service.ListEvents(r.Context(), p, filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{})
		return
	}
	helpers.WriteJSONList(w, events)
}

// Get godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.EventResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{id} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	event, err := c.Service.GetEvent(r.Context(), p, r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{
			NotFound:  "Event not found",
			Forbidden: "Access denied to this event",
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "", event)
}

// Create godoc
// @Summary Create an event
// @Description Accepts JSON, or multipart/form-data with the same fields plus an optional image part (jpg, jpeg, png, gif, webp). In multipart bodies recurring is a JSON string.
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param body body controllers.EventRequest true "Event"
// @Success 201 {object} controllers.EventResponse
// @Failure 400 {object} helpers.APIResponse "errors lists every field problem"
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	in, image, ok := c.decodeEvent(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), p, in, image)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{
			Forbidden: "Access denied. You are not allowed to create events",
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "Event created successfully", event)
}

// Update godoc
// @Summary Update an event
// @Description Partial update; only fields present in the body change. The result is validated as a whole.
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body controllers.EventRequest true "Fields to change"
// @Success 200 {object} controllers.EventResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{id} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	in, image, ok := c.decodeEvent(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), p, r.PathValue("id"), in, image)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{
			NotFound:  "Event not found",
			Forbidden: "Access denied. You can only update your own events",
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Event updated successfully", event)
}

// Delete godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{id} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := c.Service.DeleteEvent(r.Context(), p, r.PathValue("id")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, helpers.ErrorMessages{
			NotFound:  "Event not found",
			Forbidden: "Access denied. You can only delete your own events",
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Event deleted successfully", nil)
}
