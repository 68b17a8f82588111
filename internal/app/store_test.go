package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/domain"
)

// memStore is an in-memory stand-in for Postgres. Transactions hold a
// store-wide lock and roll back every map on error.
type memStore struct {
	mu      sync.Mutex
	events  map[string]domain.Event
	orders  map[string]domain.Order
	tickets []domain.Ticket
	outbox  []domain.OrderEvent

	// failTicketAt makes the n-th CreateTicket call (1-based) fail.
	failTicketAt int
	ticketCalls  int
	takenNumbers map[string]bool
}

type memTxKey struct{}

func newMemStore(events ...domain.Event) *memStore {
	s := &memStore{
		events:       map[string]domain.Event{},
		orders:       map[string]domain.Order{},
		takenNumbers: map[string]bool{},
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events := cloneMap(s.events)
	orders := cloneMap(s.orders)
	tickets := append([]domain.Ticket(nil), s.tickets...)
	outbox := append([]domain.OrderEvent(nil), s.outbox...)
	numbers := cloneMap(s.takenNumbers)

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.events, s.orders, s.tickets, s.outbox, s.takenNumbers = events, orders, tickets, outbox, numbers
		return err
	}
	return nil
}

// locked runs fn under the store lock unless ctx is already inside a transaction.
func (s *memStore) locked(ctx context.Context, fn func()) {
	if ctx.Value(memTxKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *memStore) snapshot() (map[string]domain.Event, map[string]domain.Order, []domain.Ticket, []domain.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMap(s.events), cloneMap(s.orders), append([]domain.Ticket(nil), s.tickets...), append([]domain.OrderEvent(nil), s.outbox...)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memEvents struct{ *memStore }

func (r memEvents) CreateEvent(ctx context.Context, e domain.Event) error {
	r.locked(ctx, func() { r.events[e.ID] = e })
	return nil
}

func (r memEvents) GetEvent(ctx context.Context, id string) (e domain.Event, err error) {
	r.locked(ctx, func() {
		var ok bool
		if e, ok = r.events[id]; !ok {
			err = domain.ErrEventNotFound
		}
	})
	return e, err
}

func (r memEvents) GetEventForUpdate(ctx context.Context, id string) (domain.Event, error) {
	return r.GetEvent(ctx, id)
}

func (r memEvents) UpdateEvent(ctx context.Context, e domain.Event) (err error) {
	r.locked(ctx, func() {
		if _, ok := r.events[e.ID]; !ok {
			err = domain.ErrEventNotFound
			return
		}
		r.events[e.ID] = e
	})
	return err
}

func (r memEvents) DeleteEvent(ctx context.Context, id string) (err error) {
	r.locked(ctx, func() {
		if _, ok := r.events[id]; !ok {
			err = domain.ErrEventNotFound
			return
		}
		for _, o := range r.orders {
			if o.EventID == id {
				err = domain.ErrEventHasOrders
				return
			}
		}
		delete(r.events, id)
	})
	return err
}

func (r memEvents) Publish(ctx context.Context, id string, at time.Time) (e domain.Event, err error) {
	r.locked(ctx, func() {
		var ok bool
		if e, ok = r.events[id]; !ok {
			err = domain.ErrEventNotFound
			return
		}
		if !e.Published {
			e.Published = true
			e.UpdatedAt = at
			r.events[id] = e
		}
	})
	return e, err
}

func (r memEvents) Availability(ctx context.Context, id string) (a domain.Availability, err error) {
	r.locked(ctx, func() {
		e, ok := r.events[id]
		if !ok {
			err = domain.ErrEventNotFound
			return
		}
		a = domain.Availability{EventID: e.ID, TotalSeats: e.TotalSeats, AvailableSeats: e.AvailableSeats}
	})
	return a, err
}

func (r memEvents) AdjustSeats(ctx context.Context, id string, delta int) (a domain.Availability, err error) {
	r.locked(ctx, func() {
		e, ok := r.events[id]
		if !ok {
			err = domain.ErrEventNotFound
			return
		}
		if e.AvailableSeats-delta < 0 {
			err = domain.ErrNotEnoughSeats
			return
		}
		e.AvailableSeats = min(e.TotalSeats, e.AvailableSeats-delta)
		r.events[id] = e
		a = domain.Availability{EventID: e.ID, TotalSeats: e.TotalSeats, AvailableSeats: e.AvailableSeats}
	})
	return a, err
}

func (r memEvents) ListEvents(ctx context.Context, publishedOnly bool) (out []domain.Event, err error) {
	r.locked(ctx, func() {
		for _, e := range r.events {
			if !publishedOnly || e.Published {
				out = append(out, e)
			}
		}
	})
	sortEvents(out)
	return out, nil
}

func (r memEvents) ListByOrganizer(ctx context.Context, organizerID string) (out []domain.Event, err error) {
	r.locked(ctx, func() {
		for _, e := range r.events {
			if e.OrganizerID == organizerID {
				out = append(out, e)
			}
		}
	})
	sortEvents(out)
	return out, nil
}

func (r memEvents) SearchEvents(ctx context.Context, s domain.EventSearch, now time.Time) (out []domain.Event, err error) {
	r.locked(ctx, func() {
		for _, e := range r.events {
			if !e.Published {
				continue
			}
			switch {
			case s.Title != "":
				if containsFold(e.Title, s.Title) {
					out = append(out, e)
				}
			case s.Category != "":
				for _, c := range e.Categories {
					if c == s.Category {
						out = append(out, e)
						break
					}
				}
			case s.VenueID != "":
				if e.VenueID == s.VenueID {
					out = append(out, e)
				}
			default:
				if e.StartsAt.After(now) {
					out = append(out, e)
				}
			}
		}
	})
	sortEvents(out)
	return out, nil
}

type memOrders struct{ *memStore }

func (r memOrders) CreateOrder(ctx context.Context, o domain.Order) (err error) {
	r.locked(ctx, func() {
		if _, ok := r.events[o.EventID]; !ok {
			err = domain.ErrEventNotFound
			return
		}
		o.TicketIDs = append([]string(nil), o.TicketIDs...)
		r.orders[o.ID] = o
	})
	return err
}

func (r memOrders) UpdateOrder(ctx context.Context, o domain.Order) (err error) {
	r.locked(ctx, func() {
		existing, ok := r.orders[o.ID]
		if !ok {
			err = domain.ErrOrderNotFound
			return
		}
		existing.Status = o.Status
		existing.TicketIDs = append([]string(nil), o.TicketIDs...)
		existing.UpdatedAt = o.UpdatedAt
		r.orders[o.ID] = existing
	})
	return err
}

func (r memOrders) GetOrder(ctx context.Context, id string) (o domain.Order, err error) {
	r.locked(ctx, func() {
		var ok bool
		if o, ok = r.orders[id]; !ok {
			err = domain.ErrOrderNotFound
		}
	})
	return o, err
}

func (r memOrders) GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r memOrders) ListOrders(ctx context.Context) (out []domain.Order, err error) {
	r.locked(ctx, func() {
		for _, o := range r.orders {
			out = append(out, o)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memOrders) ListByUser(ctx context.Context, userID string) (out []domain.Order, err error) {
	r.locked(ctx, func() {
		for _, o := range r.orders {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memTickets struct{ *memStore }

var errTicketStoreDown = errors.New("ticket store down")

func (r memTickets) CreateTicket(ctx context.Context, t domain.Ticket) (err error) {
	r.locked(ctx, func() {
		r.ticketCalls++
		if r.failTicketAt > 0 && r.ticketCalls == r.failTicketAt {
			err = errTicketStoreDown
			return
		}
		if r.takenNumbers[t.Number] {
			err = domain.ErrTicketNumberTaken
			return
		}
		if _, ok := r.orders[t.OrderID]; !ok {
			err = domain.ErrOrderNotFound
			return
		}
		r.takenNumbers[t.Number] = true
		r.tickets = append(r.tickets, t)
	})
	return err
}

func (r memTickets) GetTicket(ctx context.Context, id string) (t domain.Ticket, err error) {
	r.locked(ctx, func() {
		for _, candidate := range r.tickets {
			if candidate.ID == id {
				t = candidate
				return
			}
		}
		err = domain.ErrTicketNotFound
	})
	return t, err
}

func (r memTickets) MarkUsed(ctx context.Context, id string, at time.Time) (t domain.Ticket, redeemed bool, err error) {
	r.locked(ctx, func() {
		for i := range r.tickets {
			if r.tickets[i].ID != id {
				continue
			}
			if !r.tickets[i].Used {
				r.tickets[i].Used = true
				usedAt := at
				r.tickets[i].UsedAt = &usedAt
				redeemed = true
			}
			t = r.tickets[i]
			return
		}
		err = domain.ErrTicketNotFound
	})
	return t, redeemed, err
}

func (r memTickets) ListByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	return r.filter(ctx, func(t domain.Ticket) bool { return t.OrderID == orderID }), nil
}

func (r memTickets) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	return r.filter(ctx, func(t domain.Ticket) bool { return t.EventID == eventID }), nil
}

func (r memTickets) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.filter(ctx, func(t domain.Ticket) bool { return t.UserID == userID }), nil
}

func (r memTickets) filter(ctx context.Context, keep func(domain.Ticket) bool) []domain.Ticket {
	out := []domain.Ticket{}
	r.locked(ctx, func() {
		for _, t := range r.tickets {
			if keep(t) {
				out = append(out, t)
			}
		}
	})
	return out
}

type memOutbox struct{ *memStore }

func (r memOutbox) RecordOrderEvent(ctx context.Context, evt domain.OrderEvent) error {
	r.locked(ctx, func() { r.outbox = append(r.outbox, evt) })
	return nil
}

func sortEvents(events []domain.Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// workflow wires every service over one memStore the way cmd/boxoffice wires
// them over Postgres.
type workflow struct {
	store   *memStore
	events  *EventService
	tickets *TicketService
	orders  *OrderService
}

func newWorkflow(store *memStore, now time.Time, opts ...Option) workflow {
	clk := clock.NewFixed(now)
	events := NewEventService(memEvents{store}, clk, opts...)
	tickets := NewTicketService(memTickets{store}, clk, opts...)
	orders := NewOrderService(memOrders{store}, events, tickets, memOutbox{store}, clk, opts...)
	return workflow{store: store, events: events, tickets: tickets, orders: orders}
}
