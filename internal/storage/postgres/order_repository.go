package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, event_id, ticket_type, quantity, unit_price, total_amount, status,
	payment_method, transaction_id, ticket_ids, created_at, updated_at`

type OrderRepository struct {
	db
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db{pool: pool}}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o domain.Order) error {
	const stmt = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.exec(ctx, stmt,
		o.ID, o.UserID, o.EventID, o.TicketType, o.Quantity, o.UnitPrice, o.TotalAmount,
		o.Status, o.PaymentMethod, o.TransactionID, nonNil(o.TicketIDs), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) || isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		if isOutOfRange(err) {
			return domain.ErrAmountOutOfRange
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateOrder persists the status, ticket list and update time.
func (r *OrderRepository) UpdateOrder(ctx context.Context, o domain.Order) error {
	const stmt = `
UPDATE orders
SET status = $2, ticket_ids = $3, updated_at = $4
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, o.ID, o.Status, nonNil(o.TicketIDs), o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetOrderForUpdate locks the order row until the surrounding transaction ends.
func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepository) getOrder(ctx context.Context, query, id string) (domain.Order, error) {
	o, err := scanOrder(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o          domain.Order
		ticketType string
		status     string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.EventID, &ticketType, &o.Quantity, &o.UnitPrice, &o.TotalAmount,
		&status, &o.PaymentMethod, &o.TransactionID, &o.TicketIDs, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.TicketType = domain.TicketType(ticketType)
	o.Status = domain.OrderStatus(status)
	return o, nil
}
