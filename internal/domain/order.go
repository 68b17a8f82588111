package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type OrderStatus string

const (
	// OrderStatusPending only exists in memory while an order is being assembled.
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled:
		return status, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidOrderStatus
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Order is a purchase of Quantity tickets of one type for one event.
type Order struct {
	ID            string
	UserID        string
	EventID       string
	TicketType    TicketType
	Quantity      int
	UnitPrice     float64
	TotalAmount   float64
	Status        OrderStatus
	PaymentMethod string
	TransactionID string
	TicketIDs     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total returns the stored amount, or quantity times unit price when none was stored.
func (o Order) Total() float64 {
	if o.TotalAmount != 0 {
		return o.TotalAmount
	}
	return OrderAmount(o.Quantity, o.UnitPrice)
}

// Complete moves a pending order to COMPLETED.
func (o *Order) Complete(transactionID string, now time.Time) error {
	if o.Status != OrderStatusPending {
		return ErrInvalidState
	}
	o.Status = OrderStatusCompleted
	o.TransactionID = transactionID
	o.UpdatedAt = now
	return nil
}

// Cancel moves a completed order to CANCELED. Any other status is rejected.
func (o *Order) Cancel(now time.Time) error {
	if o.Status != OrderStatusCompleted {
		return ErrOrderNotCompleted
	}
	o.Status = OrderStatusCanceled
	o.UpdatedAt = now
	return nil
}
