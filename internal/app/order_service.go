package app

import (
	"context"
	"errors"
	"strings"

	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/cimillas/boxoffice/internal/logging"
	"github.com/sirupsen/logrus"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, o domain.Order) error
	UpdateOrder(ctx context.Context, o domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// SeatInventory is the part of the event catalog the order workflow relies on.
type SeatInventory interface {
	GetAvailability(ctx context.Context, eventID string) (domain.Availability, error)
	AdjustSeats(ctx context.Context, eventID string, delta int) (domain.Availability, error)
}

type TicketIssuer interface {
	IssueTickets(ctx context.Context, in IssueTicketsInput) ([]domain.Ticket, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error)
}

// OrderEventRecorder stores integration events inside the order transaction.
type OrderEventRecorder interface {
	RecordOrderEvent(ctx context.Context, evt domain.OrderEvent) error
}

// OrderService runs the purchase and cancellation workflows. Each workflow is
// a single storage transaction: the order row, its tickets, the seat counter
// and the outbox entry commit or roll back together.
type OrderService struct {
	repo      OrderRepository
	inventory SeatInventory
	tickets   TicketIssuer
	events    OrderEventRecorder
	clock     clock.Clock
	opts      options
}

func NewOrderService(
	repo OrderRepository,
	inventory SeatInventory,
	tickets TicketIssuer,
	events OrderEventRecorder,
	clk clock.Clock,
	opts ...Option,
) *OrderService {
	return &OrderService{
		repo:      repo,
		inventory: inventory,
		tickets:   tickets,
		events:    events,
		clock:     clk,
		opts:      buildOptions(opts),
	}
}

type CreateOrderInput struct {
	UserID        string
	EventID       string
	TicketType    domain.TicketType
	Quantity      int
	UnitPrice     float64
	PaymentMethod string
}

func (in CreateOrderInput) validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return domain.ErrUserIDRequired
	}
	if strings.TrimSpace(in.EventID) == "" {
		return domain.ErrEventIDRequired
	}
	if !in.TicketType.Valid() {
		return domain.ErrInvalidTicketType
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !domain.ValidPrice(in.UnitPrice) {
		return domain.ErrInvalidUnitPrice
	}
	if domain.OrderAmount(in.Quantity, in.UnitPrice) > domain.MaxOrderAmount {
		return domain.ErrOrderAmountTooLarge
	}
	return nil
}

// CreateOrder sells Quantity seats of an event. It returns a COMPLETED order
// whose TicketIDs hold exactly Quantity freshly issued tickets, or an error
// and no trace of the attempt.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if err := in.validate(); err != nil {
		return domain.Order{}, err
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"event_id": in.EventID,
		"user_id":  in.UserID,
		"quantity": in.Quantity,
	})

	var order domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		availability, err := s.inventory.GetAvailability(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if availability.AvailableSeats < in.Quantity {
			return domain.ErrNotEnoughSeats
		}

		now := s.clock.Now()
		o := domain.Order{
			ID:            newID(),
			UserID:        in.UserID,
			EventID:       in.EventID,
			TicketType:    in.TicketType,
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			TotalAmount:   domain.OrderAmount(in.Quantity, in.UnitPrice),
			Status:        domain.OrderStatusPending,
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := o.Complete(newID(), now); err != nil {
			return err
		}
		if err := s.repo.CreateOrder(txCtx, o); err != nil {
			return err
		}

		issued, err := s.tickets.IssueTickets(txCtx, IssueTicketsInput{
			EventID:   o.EventID,
			OrderID:   o.ID,
			UserID:    o.UserID,
			Type:      o.TicketType,
			Quantity:  o.Quantity,
			UnitPrice: o.UnitPrice,
		})
		if err != nil {
			return err
		}
		o.TicketIDs = make([]string, 0, len(issued))
		for _, t := range issued {
			o.TicketIDs = append(o.TicketIDs, t.ID)
		}
		if err := s.repo.UpdateOrder(txCtx, o); err != nil {
			return err
		}

		// The conditional decrement is what prevents overselling; the check
		// above only fails fast.
		if _, err := s.inventory.AdjustSeats(txCtx, o.EventID, o.Quantity); err != nil {
			return err
		}

		if err := s.events.RecordOrderEvent(txCtx, domain.NewOrderEvent(domain.OrderCompleted, o, now)); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotEnoughSeats) {
			s.opts.metrics.SeatConflict()
			log.Warn("order rejected: not enough seats")
		}
		return domain.Order{}, err
	}

	s.opts.metrics.OrderCompleted(len(order.TicketIDs))
	log.WithField("order_id", order.ID).Info("order completed")
	return order, nil
}

// CancelOrder cancels a COMPLETED order and returns its seats to the event.
// Canceling twice fails with domain.ErrOrderNotCompleted.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, domain.ErrInvalidID
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	var order domain.Order
	var restored int
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := o.Cancel(now); err != nil {
			return err
		}

		tickets, err := s.tickets.ListByOrder(txCtx, o.ID)
		if err != nil {
			return err
		}
		if len(tickets) > 0 {
			if _, err := s.inventory.AdjustSeats(txCtx, tickets[0].EventID, -len(tickets)); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateOrder(txCtx, o); err != nil {
			return err
		}
		if err := s.events.RecordOrderEvent(txCtx, domain.NewOrderEvent(domain.OrderCanceled, o, now)); err != nil {
			return err
		}
		order = o
		restored = len(tickets)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.opts.metrics.OrderCanceled()
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"order_id":       order.ID,
		"event_id":       order.EventID,
		"seats_restored": restored,
	}).Info("order canceled")
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, domain.ErrInvalidID
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.GetOrder(ctx, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListOrders(ctx)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListByUser(ctx, userID)
}
