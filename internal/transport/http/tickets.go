package http

import (
	"context"
	"net/http"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/go-chi/chi/v5"
)

// TicketService is the minimal interface needed for the ticket endpoints.
type TicketService interface {
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	MarkUsed(ctx context.Context, ticketID string) (domain.Ticket, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
}

func HandleGetTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket, err := svc.GetTicket(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTicketResponse(ticket))
	}
}

// HandleUseTicket redeems a ticket. Redeeming twice returns the same ticket.
func HandleUseTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket, err := svc.MarkUsed(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTicketResponse(ticket))
	}
}

func HandleListOrderTickets(svc TicketService) http.HandlerFunc {
	return listTickets(svc.ListByOrder, "orderId")
}

func HandleListEventTickets(svc TicketService) http.HandlerFunc {
	return listTickets(svc.ListByEvent, "eventId")
}

func HandleListUserTickets(svc TicketService) http.HandlerFunc {
	return listTickets(svc.ListByUser, "userId")
}

func listTickets(list func(context.Context, string) ([]domain.Ticket, error), param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := list(r.Context(), chi.URLParam(r, param))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTicketResponses(tickets))
	}
}
