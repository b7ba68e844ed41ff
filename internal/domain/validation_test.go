package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	out := make(map[string]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-01-01T09:00:00Z", want},
		{"rfc3339 millis", "2024-01-01T09:00:00.000Z", want},
		{"offset", "2024-01-01T11:00:00+02:00", want},
		{"no zone", "2024-01-01T09:00:00", want},
		{"datetime-local", "2024-01-01T09:00", want},
		{"date only", "2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"js date string", "Mon Jan 01 2024 09:00:00 GMT+0000 (Coordinated Universal Time)", want},
		{"js date string offset", "Mon Jan 01 2024 10:00:00 GMT+0100 (Central European Standard Time)", want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTimestamp("not a date")
	assert.Error(t, err)
}

func TestValidateEvent_Create(t *testing.T) {
	t.Run("valid input gets defaults", func(t *testing.T) {
		e, err := ValidateEvent(EventInput{
			Title: ptr("  Standup  "),
			Start: ptr("2024-01-01T09:00:00Z"),
			End:   ptr("2024-01-01T09:30:00Z"),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Standup", e.Title)
		assert.Equal(t, EventTypeMeeting, e.Type)
		assert.Equal(t, EventStatusScheduled, e.Status)
		assert.True(t, e.IsPublic)
		assert.False(t, e.AllDay)
		assert.Equal(t, DefaultRecurrence(), e.Recurring)
		assert.Empty(t, e.Attendees)
		assert.True(t, e.End.After(e.Start))
	})

	t.Run("start equal to end", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{
			Title: ptr("Standup"),
			Start: ptr("2024-01-01T09:00:00Z"),
			End:   ptr("2024-01-01T09:00:00Z"),
		}, nil)
		msgs := fieldMessages(t, err)
		assert.Equal(t, "End date must be after start date", msgs["end"])
	})

	t.Run("all problems reported at once", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{
			Title:       ptr(strings.Repeat("x", 101)),
			Description: ptr(strings.Repeat("d", 501)),
			Location:    ptr(strings.Repeat("l", 101)),
			City:        ptr(strings.Repeat("c", 51)),
			Type:        ptr("party"),
			Status:      ptr("postponed"),
			Rejected:    []FieldError{{Field: "allDay", Message: "All day must be a boolean value"}},
		}, nil)
		msgs := fieldMessages(t, err)
		assert.Equal(t, map[string]string{
			"title":       "Title cannot exceed 100 characters",
			"start":       "Start date is required",
			"end":         "End date is required",
			"type":        "Invalid event type",
			"status":      "Invalid event status",
			"description": "Description cannot exceed 500 characters",
			"location":    "Location cannot exceed 100 characters",
			"city":        "City cannot exceed 50 characters",
			"allDay":      "All day must be a boolean value",
		}, msgs)
	})

	t.Run("missing and blank title", func(t *testing.T) {
		for _, title := range []*string{nil, ptr("   ")} {
			_, err := ValidateEvent(EventInput{
				Title: title,
				Start: ptr("2024-01-01T09:00:00Z"),
				End:   ptr("2024-01-01T10:00:00Z"),
			}, nil)
			assert.Equal(t, "Event title is required", fieldMessages(t, err)["title"])
		}
	})

	t.Run("title length counts characters", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{
			Title: ptr(strings.Repeat("é", MaxTitleLen)),
			Start: ptr("2024-01-01T09:00:00Z"),
			End:   ptr("2024-01-01T10:00:00Z"),
		}, nil)
		assert.NoError(t, err)
	})

	t.Run("invalid dates skip ordering check", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{
			Title: ptr("Standup"),
			Start: ptr("tomorrow"),
			End:   ptr("2024-01-01T10:00:00Z"),
		}, nil)
		msgs := fieldMessages(t, err)
		assert.Equal(t, "Start date must be a valid date", msgs["start"])
		assert.NotContains(t, msgs, "end")
	})

	t.Run("attendees are de-duplicated", func(t *testing.T) {
		id := "7b0c5f4e-7a43-4a36-9a43-2b35b3c3d9f1"
		e, err := ValidateEvent(EventInput{
			Title:     ptr("Standup"),
			Start:     ptr("2024-01-01T09:00:00Z"),
			End:       ptr("2024-01-01T10:00:00Z"),
			Attendees: &[]string{id, strings.ToUpper(id)},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{id}, e.Attendees)
	})

	t.Run("bad attendee id", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{
			Title:     ptr("Standup"),
			Start:     ptr("2024-01-01T09:00:00Z"),
			End:       ptr("2024-01-01T10:00:00Z"),
			Attendees: &[]string{"bob"},
		}, nil)
		assert.Equal(t, "Attendees must be valid user ids", fieldMessages(t, err)["attendees"])
	})

	t.Run("recurrence", func(t *testing.T) {
		e, err := ValidateEvent(EventInput{
			Title: ptr("Standup"),
			Start: ptr("2024-01-01T09:00:00Z"),
			End:   ptr("2024-01-01T10:00:00Z"),
			Recurring: &RecurrenceInput{
				IsRecurring: ptr(true),
				Frequency:   ptr("daily"),
				Interval:    ptr(2),
				EndDate:     ptr("2024-02-01"),
			},
		}, nil)
		require.NoError(t, err)
		assert.True(t, e.Recurring.IsRecurring)
		assert.Equal(t, FrequencyDaily, e.Recurring.Frequency)
		assert.Equal(t, 2, e.Recurring.Interval)
		require.NotNil(t, e.Recurring.EndDate)

		_, err = ValidateEvent(EventInput{
			Title:     ptr("Standup"),
			Start:     ptr("2024-01-01T09:00:00Z"),
			End:       ptr("2024-01-01T10:00:00Z"),
			Recurring: &RecurrenceInput{Frequency: ptr("hourly"), Interval: ptr(0)},
		}, nil)
		msgs := fieldMessages(t, err)
		assert.Contains(t, msgs, "recurring.frequency")
		assert.Contains(t, msgs, "recurring.interval")
	})
}

func TestValidateEvent_Update(t *testing.T) {
	stored := &Event{
		ID:        "ev-1",
		Title:     "Planning",
		Start:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Type:      EventTypeTask,
		City:      "London",
		CreatedBy: "admin-1",
		Attendees: []string{},
		IsPublic:  false,
		Status:    EventStatusScheduled,
		Recurring: DefaultRecurrence(),
	}

	t.Run("empty input keeps everything", func(t *testing.T) {
		e, err := ValidateEvent(EventInput{}, stored)
		require.NoError(t, err)
		assert.Equal(t, stored, e)
		assert.NotSame(t, stored, e)
	})

	t.Run("end is checked against stored start", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{End: ptr("2024-01-01T08:00:00Z")}, stored)
		assert.Equal(t, "End date must be after start date", fieldMessages(t, err)["end"])
	})

	t.Run("start is checked against stored end", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{Start: ptr("2024-01-01T10:00:00Z")}, stored)
		assert.Equal(t, "End date must be after start date", fieldMessages(t, err)["end"])
	})

	t.Run("moving both ends together", func(t *testing.T) {
		e, err := ValidateEvent(EventInput{
			Start: ptr("2024-01-02T09:00:00Z"),
			End:   ptr("2024-01-02T10:00:00Z"),
		}, stored)
		require.NoError(t, err)
		assert.Equal(t, 2, e.Start.Day())
		assert.Equal(t, "Planning", e.Title)
	})

	t.Run("status moves freely", func(t *testing.T) {
		done := &Event{}
		*done = *stored
		done.Status = EventStatusCompleted
		e, err := ValidateEvent(EventInput{Status: ptr("scheduled")}, done)
		require.NoError(t, err)
		assert.Equal(t, EventStatusScheduled, e.Status)
	})

	t.Run("stored record is not modified", func(t *testing.T) {
		_, err := ValidateEvent(EventInput{Title: ptr("Renamed"), City: ptr("Paris")}, stored)
		require.NoError(t, err)
		assert.Equal(t, "Planning", stored.Title)
		assert.Equal(t, "London", stored.City)
	})
}
