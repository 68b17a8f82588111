package http

import (
	"context"
	"net/http"

	"github.com/cimillas/boxoffice/internal/app"
	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/go-chi/chi/v5"
)

// OrderService is the minimal interface needed for the order endpoints.
type OrderService interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type createOrderRequest struct {
	UserID        string  `json:"userId"`
	EventID       string  `json:"eventId"`
	TicketType    string  `json:"ticketType"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	PaymentMethod string  `json:"paymentMethod"`
}

// HandleCreateOrder purchases tickets and answers with the completed order.
func HandleCreateOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		ticketType, err := domain.ParseTicketType(req.TicketType)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
			UserID:        req.UserID,
			EventID:       req.EventID,
			TicketType:    ticketType,
			Quantity:      req.Quantity,
			UnitPrice:     req.UnitPrice,
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newOrderResponse(order))
	}
}

func HandleListOrders(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListOrders(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newOrderResponses(orders))
	}
}

func HandleGetOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

func HandleListUserOrders(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListByUser(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newOrderResponses(orders))
	}
}

// HandleCancelOrder cancels a completed order and gives its seats back.
func HandleCancelOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.CancelOrder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}
