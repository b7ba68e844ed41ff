package domain

import (
	"strings"
	"time"
)

// EventFilter holds the optional listing filters as received from a request.
// DateStart and DateEnd only apply when both are set.
type EventFilter struct {
	DateStart  string
	DateEnd    string
	Type       string
	Status     string
	City       string
	PublicOnly bool
}

// Visibility restricts which events a query may return.
type Visibility int

const (
	// VisibilityAll applies no visibility restriction (admins).
	VisibilityAll Visibility = iota
	// VisibilityPublicOrOwned returns public events and events created by ViewerID.
	VisibilityPublicOrOwned
	// VisibilityPublic returns public events only.
	VisibilityPublic
)

// EventQuery is a storage-agnostic description of an event listing.
// Results are always ordered by start ascending.
type EventQuery struct {
	Visibility Visibility
	ViewerID   string
	// StartFrom and StartTo bound the event start time, both inclusive.
	// Events that begin before StartFrom are excluded even if they overlap.
	StartFrom     *time.Time
	StartTo       *time.Time
	Type          EventType
	Status        EventStatus
	City          string
	OmitAttendees bool
}

// BuildEventQuery translates filter into a query scoped to what p may see.
func BuildEventQuery(p Principal, filter EventFilter) (EventQuery, error) {
	q := EventQuery{Visibility: VisibilityAll}
	if !p.IsAdmin() {
		q.Visibility = VisibilityPublicOrOwned
		q.ViewerID = p.UserID
		if p.UserID == "" {
			q.Visibility = VisibilityPublic
		}
	}
	if filter.PublicOnly {
		q.Visibility = VisibilityPublic
		q.ViewerID = ""
	}

	var errs []FieldError
	from, to := strings.TrimSpace(filter.DateStart), strings.TrimSpace(filter.DateEnd)
	if from != "" && to != "" {
		start, err := ParseTimestamp(from)
		if err != nil {
			errs = append(errs, FieldError{Field: "start", Message: "Start date must be a valid date"})
		}
		end, err := ParseTimestamp(to)
		if err != nil {
			errs = append(errs, FieldError{Field: "end", Message: "End date must be a valid date"})
		}
		if len(errs) == 0 {
			q.StartFrom = &start
			q.StartTo = &end
		}
	}

	q.Type = EventType(strings.TrimSpace(filter.Type))
	if q.Type != "" && !q.Type.Valid() {
		errs = append(errs, FieldError{Field: "type", Message: "Invalid event type"})
	}
	q.Status = EventStatus(strings.TrimSpace(filter.Status))
	if q.Status != "" && !q.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "Invalid event status"})
	}
	if len(errs) > 0 {
		return EventQuery{}, &ValidationError{Errors: errs}
	}
	q.City = filter.City
	return q, nil
}

// PublicEventQuery is the query behind the anonymous public calendar.
func PublicEventQuery(city string) EventQuery {
	return EventQuery{
		Visibility:    VisibilityPublic,
		City:          city,
		OmitAttendees: true,
	}
}

// Matches reports whether e satisfies q. Storage backends that cannot push
// the query down use it; it also documents the query semantics.
func (q EventQuery) Matches(e *Event) bool {
	switch q.Visibility {
	case VisibilityPublic:
		if !e.IsPublic {
			return false
		}
	case VisibilityPublicOrOwned:
		if !e.IsPublic && (q.ViewerID == "" || e.CreatedBy != q.ViewerID) {
			return false
		}
	}
	if q.StartFrom != nil && e.Start.Before(*q.StartFrom) {
		return false
	}
	if q.StartTo != nil && e.Start.After(*q.StartTo) {
		return false
	}
	if q.Type != "" && e.Type != q.Type {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if q.City != "" && e.City != q.City {
		return false
	}
	return true
}
