package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, starts_at, ends_at, venue_id, organizer_id, categories,
	image_url, total_seats, available_seats, published, base_price, created_at, updated_at`

type EventRepository struct {
	db
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db{pool: pool}}
}

func (r *EventRepository) CreateEvent(ctx context.Context, e domain.Event) error {
	const stmt = `
INSERT INTO events (` + eventColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.exec(ctx, stmt,
		e.ID, e.Title, e.Description, nullableTime(e.StartsAt), nullableTime(e.EndsAt),
		e.VenueID, e.OrganizerID, nonNil(e.Categories), e.ImageURL, e.TotalSeats,
		e.AvailableSeats, e.Published, e.BasePrice, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isOutOfRange(err) {
			return domain.ErrAmountOutOfRange
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	return r.getEvent(ctx, "get event", `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

// GetEventForUpdate locks the event row until the surrounding transaction ends.
func (r *EventRepository) GetEventForUpdate(ctx context.Context, id string) (domain.Event, error) {
	return r.getEvent(ctx, "lock event", `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *EventRepository) getEvent(ctx context.Context, op, query string, args ...any) (domain.Event, error) {
	e, err := scanEvent(r.queryRow(ctx, query, args...))
	if err != nil {
		// A malformed id cannot name a stored event.
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// UpdateEvent stores every mutable column, including the seat counters.
func (r *EventRepository) UpdateEvent(ctx context.Context, e domain.Event) error {
	const stmt = `
UPDATE events
SET title = $2, description = $3, starts_at = $4, ends_at = $5, venue_id = $6, organizer_id = $7,
	categories = $8, image_url = $9, total_seats = $10, available_seats = $11, published = $12,
	base_price = $13, updated_at = $14
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		e.ID, e.Title, e.Description, nullableTime(e.StartsAt), nullableTime(e.EndsAt),
		e.VenueID, e.OrganizerID, nonNil(e.Categories), e.ImageURL, e.TotalSeats,
		e.AvailableSeats, e.Published, e.BasePrice, e.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		if isOutOfRange(err) {
			return domain.ErrAmountOutOfRange
		}
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventHasOrders
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Publish flips the published flag; publishing twice is a no-op.
func (r *EventRepository) Publish(ctx context.Context, id string, at time.Time) (domain.Event, error) {
	const stmt = `
UPDATE events
SET published = TRUE, updated_at = CASE WHEN published THEN updated_at ELSE $2 END
WHERE id = $1
RETURNING ` + eventColumns

	return r.getEvent(ctx, "publish event", stmt, id, at)
}

func (r *EventRepository) Availability(ctx context.Context, id string) (domain.Availability, error) {
	const query = `SELECT id, total_seats, available_seats FROM events WHERE id = $1`

	var a domain.Availability
	err := r.queryRow(ctx, query, id).Scan(&a.EventID, &a.TotalSeats, &a.AvailableSeats)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Availability{}, domain.ErrEventNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Availability{}, domain.ErrEventNotFound
		}
		return domain.Availability{}, fmt.Errorf("get availability: %w", err)
	}
	return a, nil
}

// AdjustSeats applies available -= delta in a single conditional statement.
// Concurrent callers serialize on the row lock taken by UPDATE and each
// re-checks the predicate against the committed value, so seats can never go
// negative. Restorations are capped at total_seats.
func (r *EventRepository) AdjustSeats(ctx context.Context, id string, delta int) (domain.Availability, error) {
	const stmt = `
UPDATE events
SET available_seats = LEAST(total_seats, available_seats - $2), updated_at = NOW()
WHERE id = $1 AND available_seats - $2 >= 0
RETURNING id, total_seats, available_seats`

	var a domain.Availability
	err := r.queryRow(ctx, stmt, id, delta).Scan(&a.EventID, &a.TotalSeats, &a.AvailableSeats)
	if err == nil {
		return a, nil
	}
	if isInvalidUUID(err) {
		return domain.Availability{}, domain.ErrEventNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Availability{}, fmt.Errorf("adjust seats: %w", err)
	}

	if _, err := r.Availability(ctx, id); err != nil {
		return domain.Availability{}, err
	}
	return domain.Availability{}, domain.ErrNotEnoughSeats
}

func (r *EventRepository) ListEvents(ctx context.Context, publishedOnly bool) ([]domain.Event, error) {
	const query = `
SELECT ` + eventColumns + `
FROM events
WHERE ($1 = FALSE OR published)
ORDER BY starts_at ASC NULLS LAST, created_at ASC`

	return r.listEvents(ctx, query, publishedOnly)
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	const query = `
SELECT ` + eventColumns + `
FROM events
WHERE organizer_id = $1
ORDER BY starts_at ASC NULLS LAST, created_at ASC`

	return r.listEvents(ctx, query, organizerID)
}

// SearchEvents looks only at published events.
func (r *EventRepository) SearchEvents(ctx context.Context, s domain.EventSearch, now time.Time) ([]domain.Event, error) {
	const base = `SELECT ` + eventColumns + ` FROM events WHERE published AND `
	const order = ` ORDER BY starts_at ASC NULLS LAST, created_at ASC`

	switch {
	case strings.TrimSpace(s.Title) != "":
		return r.listEvents(ctx, base+`title ILIKE '%' || $1 || '%' ESCAPE '\'`+order, escapeLike(strings.TrimSpace(s.Title)))
	case s.Category != "":
		return r.listEvents(ctx, base+`$1 = ANY (categories)`+order, s.Category)
	case s.VenueID != "":
		return r.listEvents(ctx, base+`venue_id = $1`+order, s.VenueID)
	default:
		return r.listEvents(ctx, base+`starts_at > $1`+order, now)
	}
}

func (r *EventRepository) listEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		e                domain.Event
		startsAt, endsAt *time.Time
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &startsAt, &endsAt, &e.VenueID, &e.OrganizerID,
		&e.Categories, &e.ImageURL, &e.TotalSeats, &e.AvailableSeats, &e.Published,
		&e.BasePrice, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}
	if startsAt != nil {
		e.StartsAt = startsAt.UTC()
	}
	if endsAt != nil {
		e.EndsAt = endsAt.UTC()
	}
	return e, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
