package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length limits, counted in characters after trimming.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
	MaxLocationLen    = 100
	MaxCityLen        = 50
)

// timestampLayouts are tried in order. The last one is the text produced by
// JavaScript's Date.prototype.toString, which browsers send in form bodies.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// ParseTimestamp parses s as an instant. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ValidateEvent merges in onto current and checks the effective record.
// current is nil when creating, in which case the defaults of NewEvent apply
// and title, start and end are required. Every rule is evaluated so the caller
// gets all problems at once. current is never modified.
func ValidateEvent(in EventInput, current *Event) (*Event, error) {
	creating := current == nil
	var e *Event
	if creating {
		e = NewEvent()
	} else {
		e = current.Clone()
	}
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if e.Title == "" {
		add("title", "Event title is required")
	} else if utf8.RuneCountInString(e.Title) > MaxTitleLen {
		add("title", "Title cannot exceed 100 characters")
	}

	startOK := applyTimestamp(in.Start, &e.Start, creating, "start", "Start", add)
	endOK := applyTimestamp(in.End, &e.End, creating, "end", "End", add)
	if startOK && endOK && !e.End.After(e.Start) {
		add("end", "End date must be after start date")
	}

	if in.Type != nil {
		if t := EventType(strings.TrimSpace(*in.Type)); t != "" {
			if t.Valid() {
				e.Type = t
			} else {
				add("type", "Invalid event type")
			}
		}
	}
	if in.Status != nil {
		if s := EventStatus(strings.TrimSpace(*in.Status)); s != "" {
			if s.Valid() {
				e.Status = s
			} else {
				add("status", "Invalid event status")
			}
		}
	}

	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLen {
		add("description", "Description cannot exceed 500 characters")
	}
	if in.Location != nil {
		e.Location = strings.TrimSpace(*in.Location)
	}
	if utf8.RuneCountInString(e.Location) > MaxLocationLen {
		add("location", "Location cannot exceed 100 characters")
	}
	if in.City != nil {
		e.City = strings.TrimSpace(*in.City)
	}
	if utf8.RuneCountInString(e.City) > MaxCityLen {
		add("city", "City cannot exceed 50 characters")
	}

	if in.AllDay != nil {
		e.AllDay = *in.AllDay
	}
	if in.IsPublic != nil {
		e.IsPublic = *in.IsPublic
	}
	if in.ImageURL != nil {
		e.ImageURL = strings.TrimSpace(*in.ImageURL)
	}

	if in.Attendees != nil {
		ids, ok := normalizeAttendees(*in.Attendees)
		if ok {
			e.Attendees = ids
		} else {
			add("attendees", "Attendees must be valid user ids")
		}
	}

	if in.Recurring != nil {
		applyRecurrence(in.Recurring, &e.Recurring, add)
	}

	errs = append(errs, in.Rejected...)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return e, nil
}

// applyTimestamp parses raw into dst and reports whether dst holds a valid
// instant afterwards.
func applyTimestamp(raw *string, dst *time.Time, required bool, field, label string, add func(string, string)) bool {
	if raw == nil {
		if required {
			add(field, label+" date is required")
			return false
		}
		return true
	}
	if strings.TrimSpace(*raw) == "" {
		add(field, label+" date is required")
		return false
	}
	t, err := ParseTimestamp(*raw)
	if err != nil {
		add(field, label+" date must be a valid date")
		return false
	}
	*dst = t
	return true
}

func applyRecurrence(in *RecurrenceInput, r *Recurrence, add func(string, string)) {
	if in.IsRecurring != nil {
		r.IsRecurring = *in.IsRecurring
	}
	if in.Frequency != nil {
		if f := Frequency(strings.TrimSpace(*in.Frequency)); f != "" {
			if f.Valid() {
				r.Frequency = f
			} else {
				add("recurring.frequency", "Invalid recurrence frequency")
			}
		}
	}
	if in.Interval != nil {
		if *in.Interval < 1 {
			add("recurring.interval", "Recurrence interval must be at least 1")
		} else {
			r.Interval = *in.Interval
		}
	}
	if in.EndDate != nil {
		if strings.TrimSpace(*in.EndDate) == "" {
			r.EndDate = nil
		} else if t, err := ParseTimestamp(*in.EndDate); err != nil {
			add("recurring.endDate", "Recurrence end date must be a valid date")
		} else {
			r.EndDate = &t
		}
	}
}

// normalizeAttendees canonicalizes and de-duplicates user ids, keeping the
// first occurrence of each.
func normalizeAttendees(raw []string) ([]string, bool) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, false
		}
		key := id.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out, true
}
