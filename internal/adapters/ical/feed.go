package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"eventcalendar/internal/domain"
)

const productID = "-//eventcalendar//public feed//EN"

// Encoder renders public events as an iCalendar (RFC 5545) feed. Recurring
// events carry an RRULE; occurrences are left to the subscribing client.
type Encoder struct {
	name string
	now  func() time.Time
}

// NewEncoder returns an Encoder whose calendar is called name.
func NewEncoder(name string) *Encoder {
	return &Encoder{name: name, now: time.Now}
}

func (e *Encoder) ContentType() string {
	return "text/calendar; charset=utf-8"
}

func (e *Encoder) Encode(w io.Writer, events []*domain.PublicEvent) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(e.name)
	cal.SetXWRCalName(e.name)

	stamp := e.now().UTC()
	for _, ev := range events {
		if err := addEvent(cal, ev, stamp); err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
	}
	return cal.SerializeTo(w)
}

func addEvent(cal *ics.Calendar, ev *domain.PublicEvent, stamp time.Time) error {
	ve := cal.AddEvent(ev.ID + "@eventcalendar")
	ve.SetDtStampTime(stamp)
	ve.SetCreatedTime(ev.CreatedAt.UTC())
	ve.SetModifiedAt(ev.UpdatedAt.UTC())
	ve.SetSummary(ev.Title)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	if loc := location(ev); loc != "" {
		ve.SetLocation(loc)
	}
	if ev.ImageURL != "" {
		ve.SetURL(ev.ImageURL)
	}
	ve.AddProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(ev.Type)))
	if ev.Status == domain.EventStatusCancelled {
		ve.SetStatus(ics.ObjectStatusCancelled)
	} else {
		ve.SetStatus(ics.ObjectStatusConfirmed)
	}

	if ev.AllDay {
		start := day(ev.Start)
		end := day(ev.End)
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
		ve.SetAllDayStartAt(start)
		ve.SetAllDayEndAt(end)
	} else {
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
	}

	if ev.Recurring.IsRecurring {
		rule, err := recurrenceRule(ev.Recurring)
		if err != nil {
			return err
		}
		ve.SetProperty(ics.ComponentPropertyRrule, rule)
	}
	return nil
}

func location(ev *domain.PublicEvent) string {
	switch {
	case ev.Location != "" && ev.City != "":
		return ev.Location + ", " + ev.City
	case ev.Location != "":
		return ev.Location
	default:
		return ev.City
	}
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var frequencies = map[domain.Frequency]rrule.Frequency{
	domain.FrequencyDaily:   rrule.DAILY,
	domain.FrequencyWeekly:  rrule.WEEKLY,
	domain.FrequencyMonthly: rrule.MONTHLY,
	domain.FrequencyYearly:  rrule.YEARLY,
}

// recurrenceRule returns the RRULE value (without the "RRULE:" prefix) for r.
func recurrenceRule(r domain.Recurrence) (string, error) {
	freq, ok := frequencies[r.Frequency]
	if !ok {
		return "", fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	opt := rrule.ROption{Freq: freq, Interval: max(r.Interval, 1)}
	if r.EndDate != nil {
		opt.Until = r.EndDate.UTC()
	}
	return opt.RRuleString(), nil
}

var _ domain.CalendarEncoder = (*Encoder)(nil)
