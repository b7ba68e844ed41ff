package domain

import (
	"context"
	"io"
	"slices"
	"time"
)

// EventType classifies a calendar event.
type EventType string

const (
	EventTypeMeeting  EventType = "meeting"
	EventTypeTask     EventType = "task"
	EventTypeReminder EventType = "reminder"
	EventTypeOther    EventType = "other"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeMeeting, EventTypeTask, EventTypeReminder, EventTypeOther:
		return true
	}
	return false
}

// EventStatus is a plain lifecycle label; any value may move to any other.
type EventStatus string

const (
	EventStatusScheduled  EventStatus = "scheduled"
	EventStatusInProgress EventStatus = "in-progress"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusCancelled  EventStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusInProgress, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Frequency is the repeat unit of a recurring event.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Recurrence describes how an event repeats. It is stored as-is and never
// expanded into individual occurrences.
// swagger:model Recurrence
type Recurrence struct {
	IsRecurring bool       `json:"isRecurring"`
	Frequency   Frequency  `json:"frequency"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Interval    int        `json:"interval"`
}

// DefaultRecurrence is the non-recurring value new events start with.
func DefaultRecurrence() Recurrence {
	return Recurrence{IsRecurring: false, Frequency: FrequencyWeekly, Interval: 1}
}

// Event is a calendar entry.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Type        EventType   `json:"type"`
	Location    string      `json:"location"`
	City        string      `json:"city"`
	AllDay      bool        `json:"allDay"`
	CreatedBy   string      `json:"createdBy"`
	Attendees   []string    `json:"attendees"`
	IsPublic    bool        `json:"isPublic"`
	Status      EventStatus `json:"status"`
	Recurring   Recurrence  `json:"recurring"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// NewEvent returns an Event holding the default values for a new record.
func NewEvent() *Event {
	return &Event{
		Type:      EventTypeMeeting,
		Attendees: []string{},
		IsPublic:  true,
		Status:    EventStatusScheduled,
		Recurring: DefaultRecurrence(),
	}
}

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	c := *e
	c.Attendees = slices.Clone(e.Attendees)
	if c.Attendees == nil {
		c.Attendees = []string{}
	}
	if e.Recurring.EndDate != nil {
		end := *e.Recurring.EndDate
		c.Recurring.EndDate = &end
	}
	return &c
}

// PublicEvent is the projection served to anonymous readers. It has no
// attendee list so identities never leak through the public calendar.
// swagger:model PublicEvent
type PublicEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Type        EventType   `json:"type"`
	Location    string      `json:"location"`
	City        string      `json:"city"`
	AllDay      bool        `json:"allDay"`
	CreatedBy   string      `json:"createdBy"`
	IsPublic    bool        `json:"isPublic"`
	Status      EventStatus `json:"status"`
	Recurring   Recurrence  `json:"recurring"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Public returns the public projection of e.
func (e *Event) Public() *PublicEvent {
	return &PublicEvent{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Type:        e.Type,
		Location:    e.Location,
		City:        e.City,
		AllDay:      e.AllDay,
		CreatedBy:   e.CreatedBy,
		IsPublic:    e.IsPublic,
		Status:      e.Status,
		Recurring:   e.Recurring,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// RecurrenceInput is a partial Recurrence; nil fields are left unchanged.
type RecurrenceInput struct {
	IsRecurring *bool   `json:"isRecurring"`
	Frequency   *string `json:"frequency"`
	EndDate     *string `json:"endDate"`
	Interval    *int    `json:"interval"`
}

// EventInput is a candidate set of event fields. On create it is the whole
// record; on update only the non-nil fields are applied. Timestamps are kept
// as text so that parsing problems are reported as field errors.
type EventInput struct {
	Title       *string
	Description *string
	Start       *string
	End         *string
	Type        *string
	Location    *string
	City        *string
	AllDay      *bool
	Attendees   *[]string
	IsPublic    *bool
	Status      *string
	Recurring   *RecurrenceInput
	ImageURL    *string

	// Rejected holds problems the request decoder found while coercing values
	// (e.g. a form field "allDay=maybe"). They are reported with the rest.
	Rejected []FieldError
}

// ImageUpload is an image supplied with a create or update request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists uploaded images and returns a URL for them.
type ImageStore interface {
	Upload(ctx context.Context, name string, img *ImageUpload) (url string, err error)
	Delete(ctx context.Context, url string) error
	// Owns reports whether url names an object this store issued.
	Owns(url string) bool
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create inserts e and sets its ID and timestamps.
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns the events matching q ordered by start ascending.
	List(ctx context.Context, q EventQuery) ([]*Event, error)
	// Update writes the updatable fields of e and refreshes UpdatedAt.
	// CreatedBy and CreatedAt are never written.
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for calendar events.
type EventService interface {
	ListEvents(ctx context.Context, p Principal, filter EventFilter) ([]*Event, error)
	ListPublicEvents(ctx context.Context, city string) ([]*PublicEvent, error)
	GetEvent(ctx context.Context, p Principal, id string) (*Event, error)
	CreateEvent(ctx context.Context, p Principal, in EventInput, image *ImageUpload) (*Event, error)
	UpdateEvent(ctx context.Context, p Principal, id string, in EventInput, image *ImageUpload) (*Event, error)
	DeleteEvent(ctx context.Context, p Principal, id string) error
}

// CalendarEncoder writes events in a calendar interchange format.
type CalendarEncoder interface {
	ContentType() string
	Encode(w io.Writer, events []*PublicEvent) error
}
