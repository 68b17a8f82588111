package domain

import "time"

type OrderEventName string

const (
	OrderCompleted OrderEventName = "OrderCompleted"
	OrderCanceled  OrderEventName = "OrderCanceled"
)

// OrderEvent is the integration record written alongside every order state change.
type OrderEvent struct {
	Name        OrderEventName `json:"name"`
	OrderID     string         `json:"order_id"`
	EventID     string         `json:"event_id"`
	UserID      string         `json:"user_id"`
	TicketType  TicketType     `json:"ticket_type"`
	Quantity    int            `json:"quantity"`
	TotalAmount float64        `json:"total_amount"`
	Status      OrderStatus    `json:"status"`
	TicketIDs   []string       `json:"ticket_ids"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

func NewOrderEvent(name OrderEventName, o Order, at time.Time) OrderEvent {
	return OrderEvent{
		Name:        name,
		OrderID:     o.ID,
		EventID:     o.EventID,
		UserID:      o.UserID,
		TicketType:  o.TicketType,
		Quantity:    o.Quantity,
		TotalAmount: o.Total(),
		Status:      o.Status,
		TicketIDs:   append([]string(nil), o.TicketIDs...),
		OccurredAt:  at,
	}
}
