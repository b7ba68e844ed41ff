package postgres

import (
	"fmt"
	"strings"

	"eventcalendar/internal/domain"
)

const publicEventColumns = `id, title, description, start_at, end_at, type, location, city, all_day,
		created_by, is_public, status, recurring, image_url, created_at, updated_at`

const eventColumns = publicEventColumns + `, attendees`

// buildEventQuery renders q as a parameterized SELECT over events.
func buildEventQuery(q domain.EventQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch q.Visibility {
	case domain.VisibilityPublic:
		where = append(where, "is_public = TRUE")
	case domain.VisibilityPublicOrOwned:
		if q.ViewerID == "" {
			where = append(where, "is_public = TRUE")
		} else {
			where = append(where, "(is_public = TRUE OR created_by = "+arg(q.ViewerID)+")")
		}
	}
	if q.StartFrom != nil {
		where = append(where, "start_at >= "+arg(*q.StartFrom))
	}
	if q.StartTo != nil {
		where = append(where, "start_at <= "+arg(*q.StartTo))
	}
	if q.Type != "" {
		where = append(where, "type = "+arg(string(q.Type)))
	}
	if q.Status != "" {
		where = append(where, "status = "+arg(string(q.Status)))
	}
	if q.City != "" {
		where = append(where, "city = "+arg(q.City))
	}

	cols := eventColumns
	if q.OmitAttendees {
		cols = publicEventColumns
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM events")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY start_at ASC, created_at ASC")
	return sb.String(), args
}
