package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventlisting/internal/domain"
)

// eventColumns is the column list shared by every query that scans a full
// event row.
const eventColumns = `id, title, description, date, location, capacity, category,
	image, image_asset_id, organizer_id, attendees, attendee_count, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category string
	err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Capacity, &category,
		&e.Image, &e.ImageAssetID, &e.OrganizerID, pq.Array(&e.Attendees), &e.AttendeeCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Category = domain.ParseCategory(category)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, capacity, category,
			image, image_asset_id, organizer_id, attendees, attendee_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.Capacity, string(e.Category),
		e.Image, e.ImageAssetID, e.OrganizerID, pq.Array(e.Attendees), e.AttendeeCount,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// buildListFilter translates an EventFilter into a WHERE clause and args.
// With no date range at all, only upcoming events are returned.
func buildListFilter(filter domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	n := 1
	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("category = $%d", n))
		args = append(args, string(filter.Category))
		n++
	}
	switch {
	case filter.StartDate == nil && filter.EndDate == nil:
		conds = append(conds, "date >= NOW()")
	default:
		if filter.StartDate != nil {
			conds = append(conds, fmt.Sprintf("date >= $%d", n))
			args = append(args, *filter.StartDate)
			n++
		}
		if filter.EndDate != nil {
			conds = append(conds, fmt.Sprintf("date <= $%d", n))
			args = append(args, *filter.EndDate)
			n++
		}
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where, args := buildListFilter(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events %s`, where)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM events %s
		ORDER BY date ASC
		LIMIT $%d OFFSET $%d
	`, eventColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`, eventColumns)
	return r.queryEvents(ctx, query, organizerID)
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE attendees @> ARRAY[$1]::text[]
		ORDER BY date ASC
	`, eventColumns)
	return r.queryEvents(ctx, query, userID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(col string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Capacity != nil {
		add("capacity", *upd.Capacity)
	}
	if upd.Category != nil {
		add("category", string(*upd.Category))
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.ImageAssetID != nil {
		add("image_asset_id", *upd.ImageAssetID)
	}
	if n == 1 {
		// No fields to update; just fetch the current row.
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddAttendee is the admission-control write path. Existence, membership,
// and capacity are checked by the same single-row UPDATE that performs the
// mutation, so there is no observation window between check and write:
// Postgres serializes conflicting updates on the row and re-evaluates the
// predicates against the committed version before applying ours. When no
// row matches, ErrConditionFailed is returned without saying why.
func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events
		SET attendees = array_append(attendees, $2),
			attendee_count = attendee_count + 1,
			updated_at = NOW()
		WHERE id = $1
			AND NOT (attendees @> ARRAY[$2]::text[])
			AND attendee_count < capacity
		RETURNING %s
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConditionFailed
		}
		return nil, err
	}
	return e, nil
}

// RemoveAttendee mirrors AddAttendee: the membership predicate guards the
// decrement, so the count can never go below zero.
func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events
		SET attendees = array_remove(attendees, $2),
			attendee_count = attendee_count - 1,
			updated_at = NOW()
		WHERE id = $1
			AND attendees @> ARRAY[$2]::text[]
		RETURNING %s
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConditionFailed
		}
		return nil, err
	}
	return e, nil
}
