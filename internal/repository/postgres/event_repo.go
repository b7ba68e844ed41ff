package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventcalendar/internal/domain"
)

// recurrenceColumn stores a domain.Recurrence as JSONB.
type recurrenceColumn domain.Recurrence

func (c recurrenceColumn) Value() (driver.Value, error) {
	return json.Marshal(domain.Recurrence(c))
}

func (c *recurrenceColumn) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = recurrenceColumn(domain.DefaultRecurrence())
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("recurring: unsupported type %T", src)
	}
	r := domain.DefaultRecurrence()
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("recurring: %w", err)
	}
	*c = recurrenceColumn(r)
	return nil
}

type eventRow struct {
	ID          string           `db:"id"`
	Title       string           `db:"title"`
	Description string           `db:"description"`
	Start       time.Time        `db:"start_at"`
	End         time.Time        `db:"end_at"`
	Type        string           `db:"type"`
	Location    string           `db:"location"`
	City        string           `db:"city"`
	AllDay      bool             `db:"all_day"`
	CreatedBy   string           `db:"created_by"`
	Attendees   pq.StringArray   `db:"attendees"`
	IsPublic    bool             `db:"is_public"`
	Status      string           `db:"status"`
	Recurring   recurrenceColumn `db:"recurring"`
	ImageURL    string           `db:"image_url"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

func (r *eventRow) toDomain() *domain.Event {
	attendees := []string(r.Attendees)
	if attendees == nil {
		attendees = []string{}
	}
	return &domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Start:       r.Start.UTC(),
		End:         r.End.UTC(),
		Type:        domain.EventType(r.Type),
		Location:    r.Location,
		City:        r.City,
		AllDay:      r.AllDay,
		CreatedBy:   r.CreatedBy,
		Attendees:   attendees,
		IsPublic:    r.IsPublic,
		Status:      domain.EventStatus(r.Status),
		Recurring:   domain.Recurrence(r.Recurring),
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type eventRepository struct {
	pool *Pool
}

func NewEventRepository(pool *Pool) domain.EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, description, start_at, end_at, type, location, city, all_day,
			created_by, attendees, is_public, status, recurring, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err = db.QueryRowxContext(ctx, query,
		e.Title, e.Description, e.Start, e.End, string(e.Type), e.Location, e.City, e.AllDay,
		e.CreatedBy, pq.Array(e.Attendees), e.IsPublic, string(e.Status), recurrenceColumn(e.Recurring), e.ImageURL,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, err
	}
	var row eventRow
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		return nil, classify(err)
	}
	return row.toDomain(), nil
}

func (r *eventRepository) List(ctx context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, err
	}
	query, args := buildEventQuery(q)
	var rows []eventRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(err)
	}
	events := make([]*domain.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toDomain())
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET title = $1, description = $2, start_at = $3, end_at = $4, type = $5, location = $6,
			city = $7, all_day = $8, attendees = $9, is_public = $10, status = $11, recurring = $12,
			image_url = $13, updated_at = now()
		WHERE id = $14
		RETURNING updated_at
	`
	err = db.QueryRowxContext(ctx, query,
		e.Title, e.Description, e.Start, e.End, string(e.Type), e.Location,
		e.City, e.AllDay, pq.Array(e.Attendees), e.IsPublic, string(e.Status), recurrenceColumn(e.Recurring),
		e.ImageURL, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
