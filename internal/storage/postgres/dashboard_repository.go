package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardRepository struct {
	db
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: db{pool: pool}}
}

// Summary aggregates every event, or only the organizer's events when
// organizerID is not empty.
func (r *DashboardRepository) Summary(ctx context.Context, organizerID string, top int) (domain.DashboardSummary, error) {
	const totals = `
WITH scoped AS (
	SELECT * FROM events WHERE $1 = '' OR organizer_id = $1
)
SELECT
	(SELECT COUNT(*) FROM scoped),
	(SELECT COUNT(*) FROM scoped WHERE published),
	(SELECT COALESCE(SUM(total_seats), 0) FROM scoped),
	(SELECT COALESCE(SUM(available_seats), 0) FROM scoped),
	(SELECT COUNT(*) FROM orders o JOIN scoped e ON e.id = o.event_id WHERE o.status = 'COMPLETED'),
	(SELECT COUNT(*) FROM orders o JOIN scoped e ON e.id = o.event_id WHERE o.status = 'CANCELED'),
	(SELECT COALESCE(SUM(o.total_amount), 0)::float8 FROM orders o JOIN scoped e ON e.id = o.event_id WHERE o.status = 'COMPLETED'),
	(SELECT COUNT(*) FROM tickets t JOIN orders o ON o.id = t.order_id JOIN scoped e ON e.id = t.event_id WHERE o.status = 'COMPLETED'),
	(SELECT COUNT(*) FROM tickets t JOIN scoped e ON e.id = t.event_id WHERE t.used)`

	var s domain.DashboardSummary
	err := r.queryRow(ctx, totals, organizerID).Scan(
		&s.TotalEvents, &s.PublishedEvents, &s.TotalSeats, &s.AvailableSeats,
		&s.CompletedOrders, &s.CanceledOrders, &s.Revenue, &s.TicketsIssued, &s.TicketsUsed,
	)
	if err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("dashboard totals: %w", err)
	}

	const topEvents = `
SELECT e.id, e.title, COALESCE(SUM(o.quantity), 0), COALESCE(SUM(o.total_amount), 0)::float8
FROM events e
LEFT JOIN orders o ON o.event_id = e.id AND o.status = 'COMPLETED'
WHERE $1 = '' OR e.organizer_id = $1
GROUP BY e.id, e.title
ORDER BY 3 DESC, e.title
LIMIT $2`

	rows, err := r.query(ctx, topEvents, organizerID, top)
	if err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("dashboard top events: %w", err)
	}
	defer rows.Close()

	s.TopEvents = []domain.EventSales{}
	for rows.Next() {
		var line domain.EventSales
		if err := rows.Scan(&line.EventID, &line.Title, &line.TicketsSold, &line.Revenue); err != nil {
			return domain.DashboardSummary{}, fmt.Errorf("scan top event: %w", err)
		}
		s.TopEvents = append(s.TopEvents, line)
	}
	if rows.Err() != nil {
		return domain.DashboardSummary{}, fmt.Errorf("iterate top events: %w", rows.Err())
	}
	return s, nil
}
