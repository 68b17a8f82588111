package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/domain"
)

type TicketRepository interface {
	CreateTicket(ctx context.Context, t domain.Ticket) error
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	// MarkUsed reports whether this call redeemed the ticket.
	MarkUsed(ctx context.Context, id string, at time.Time) (domain.Ticket, bool, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
}

// TicketService issues and redeems tickets. It never touches seat counters.
type TicketService struct {
	repo  TicketRepository
	clock clock.Clock
	opts  options
}

func NewTicketService(repo TicketRepository, clk clock.Clock, opts ...Option) *TicketService {
	return &TicketService{
		repo:  repo,
		clock: clk,
		opts:  buildOptions(opts),
	}
}

type IssueTicketsInput struct {
	EventID   string
	OrderID   string
	UserID    string
	Type      domain.TicketType
	Quantity  int
	UnitPrice float64
}

// IssueTickets creates exactly Quantity unused tickets, in order.
func (s *TicketService) IssueTickets(ctx context.Context, in IssueTicketsInput) ([]domain.Ticket, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidTicketType
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	now := s.clock.Now()
	tickets := make([]domain.Ticket, 0, in.Quantity)
	for i := 0; i < in.Quantity; i++ {
		t, err := s.issueOne(ctx, in, now)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (s *TicketService) issueOne(ctx context.Context, in IssueTicketsInput, now time.Time) (domain.Ticket, error) {
	t := domain.Ticket{
		ID:          newID(),
		EventID:     in.EventID,
		OrderID:     in.OrderID,
		UserID:      in.UserID,
		Type:        in.Type,
		Price:       in.UnitPrice,
		PurchasedAt: now,
	}
	for attempt := 0; attempt <= s.opts.ticketNumberRetries; attempt++ {
		t.Number = s.opts.ticketNumbers()
		err := s.repo.CreateTicket(ctx, t)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, domain.ErrTicketNumberTaken) {
			return domain.Ticket{}, err
		}
	}
	return domain.Ticket{}, fmt.Errorf("issue ticket after %d attempts: %w", s.opts.ticketNumberRetries+1, domain.ErrTicketNumberTaken)
}

// MarkUsed redeems a ticket. Redeeming an already used ticket returns it unchanged.
func (s *TicketService) MarkUsed(ctx context.Context, ticketID string) (domain.Ticket, error) {
	if ticketID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	now := s.clock.Now().Truncate(time.Microsecond)
	t, redeemed, err := s.repo.MarkUsed(ctx, ticketID, now)
	if err != nil {
		return domain.Ticket{}, err
	}
	if redeemed {
		s.opts.metrics.TicketUsed()
	}
	return t, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	if id == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.GetTicket(ctx, id)
}

func (s *TicketService) ListByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListByOrder(ctx, orderID)
}

func (s *TicketService) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListByEvent(ctx, eventID)
}

func (s *TicketService) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.ListByUser(ctx, userID)
}
