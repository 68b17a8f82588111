package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketColumns = `id, event_id, order_id, user_id, ticket_type, price, ticket_number, used, purchased_at, used_at`

type TicketRepository struct {
	db
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{db: db{pool: pool}}
}

// CreateTicket inserts one ticket. A clash on ticket_number is reported as
// domain.ErrTicketNumberTaken without aborting the surrounding transaction.
func (r *TicketRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (` + ticketColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT ON CONSTRAINT tickets_ticket_number_key DO NOTHING`

	tag, err := r.exec(ctx, stmt,
		t.ID, t.EventID, t.OrderID, t.UserID, t.Type, t.Price, t.Number, t.Used, t.PurchasedAt, t.UsedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			if constraintName(err) == "tickets_order_id_fkey" {
				return domain.ErrOrderNotFound
			}
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNumberTaken
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	t, err := scanTicket(r.queryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// MarkUsed sets used once and reports whether this call did it. An
// already-used ticket is returned as stored.
func (r *TicketRepository) MarkUsed(ctx context.Context, id string, at time.Time) (domain.Ticket, bool, error) {
	const stmt = `
UPDATE tickets
SET used = TRUE, used_at = $2
WHERE id = $1 AND NOT used
RETURNING ` + ticketColumns

	t, err := scanTicket(r.queryRow(ctx, stmt, id, at))
	if err == nil {
		return t, true, nil
	}
	if isInvalidUUID(err) {
		return domain.Ticket{}, false, domain.ErrTicketNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Ticket{}, false, fmt.Errorf("mark ticket used: %w", err)
	}

	t, err = r.GetTicket(ctx, id)
	if err != nil {
		return domain.Ticket{}, false, err
	}
	return t, false, nil
}

func (r *TicketRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	return r.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE order_id = $1 ORDER BY purchased_at, ticket_number`, orderID)
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	return r.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE event_id = $1 ORDER BY purchased_at, ticket_number`, eventID)
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.listTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE user_id = $1 ORDER BY purchased_at DESC, ticket_number`, userID)
}

func (r *TicketRepository) listTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return []domain.Ticket{}, nil
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return []domain.Ticket{}, nil
		}
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var (
		t          domain.Ticket
		ticketType string
	)
	err := row.Scan(&t.ID, &t.EventID, &t.OrderID, &t.UserID, &ticketType, &t.Price, &t.Number, &t.Used, &t.PurchasedAt, &t.UsedAt)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.Type = domain.TicketType(ticketType)
	return t, nil
}
