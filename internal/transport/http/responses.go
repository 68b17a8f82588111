package http

import (
	"time"

	"github.com/cimillas/boxoffice/internal/domain"
)

type eventResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartsAt       *time.Time `json:"startDateTime,omitempty"`
	EndsAt         *time.Time `json:"endDateTime,omitempty"`
	VenueID        string     `json:"venueId"`
	OrganizerID    string     `json:"organizerId"`
	Categories     []string   `json:"categories"`
	ImageURL       string     `json:"imageUrl"`
	TotalSeats     int        `json:"totalSeats"`
	AvailableSeats int        `json:"availableSeats"`
	Published      bool       `json:"published"`
	BasePrice      float64    `json:"basePrice"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func newEventResponse(e domain.Event) eventResponse {
	categories := e.Categories
	if categories == nil {
		categories = []string{}
	}
	return eventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		StartsAt:       optionalTime(e.StartsAt),
		EndsAt:         optionalTime(e.EndsAt),
		VenueID:        e.VenueID,
		OrganizerID:    e.OrganizerID,
		Categories:     categories,
		ImageURL:       e.ImageURL,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		Published:      e.Published,
		BasePrice:      e.BasePrice,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func newEventResponses(events []domain.Event) []eventResponse {
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}
	return resp
}

type availabilityResponse struct {
	EventID        string `json:"eventId"`
	TotalSeats     int    `json:"totalSeats"`
	AvailableSeats int    `json:"availableSeats"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	EventID       string    `json:"eventId"`
	TicketType    string    `json:"ticketType"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unitPrice"`
	TotalAmount   float64   `json:"totalAmount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	TransactionID string    `json:"transactionId"`
	TicketIDs     []string  `json:"ticketIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newOrderResponse(o domain.Order) orderResponse {
	ticketIDs := o.TicketIDs
	if ticketIDs == nil {
		ticketIDs = []string{}
	}
	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		EventID:       o.EventID,
		TicketType:    string(o.TicketType),
		Quantity:      o.Quantity,
		UnitPrice:     o.UnitPrice,
		TotalAmount:   o.Total(),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		TicketIDs:     ticketIDs,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func newOrderResponses(orders []domain.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	return resp
}

type ticketResponse struct {
	ID           string     `json:"id"`
	EventID      string     `json:"eventId"`
	OrderID      string     `json:"orderId"`
	UserID       string     `json:"userId"`
	TicketType   string     `json:"ticketType"`
	Price        float64    `json:"price"`
	TicketNumber string     `json:"ticketNumber"`
	Used         bool       `json:"used"`
	PurchasedAt  time.Time  `json:"purchaseDate"`
	UsedAt       *time.Time `json:"usedDate,omitempty"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		EventID:      t.EventID,
		OrderID:      t.OrderID,
		UserID:       t.UserID,
		TicketType:   string(t.Type),
		Price:        t.Price,
		TicketNumber: t.Number,
		Used:         t.Used,
		PurchasedAt:  t.PurchasedAt,
		UsedAt:       t.UsedAt,
	}
}

func newTicketResponses(tickets []domain.Ticket) []ticketResponse {
	resp := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, newTicketResponse(t))
	}
	return resp
}

type eventSalesResponse struct {
	EventID     string  `json:"eventId"`
	Title       string  `json:"title"`
	TicketsSold int     `json:"ticketsSold"`
	Revenue     float64 `json:"revenue"`
}

type dashboardResponse struct {
	TotalEvents     int                  `json:"totalEvents"`
	PublishedEvents int                  `json:"publishedEvents"`
	CompletedOrders int                  `json:"completedOrders"`
	CanceledOrders  int                  `json:"canceledOrders"`
	TicketsIssued   int                  `json:"ticketsIssued"`
	TicketsUsed     int                  `json:"ticketsUsed"`
	Revenue         float64              `json:"totalRevenue"`
	TotalSeats      int                  `json:"totalSeats"`
	AvailableSeats  int                  `json:"availableSeats"`
	TopEvents       []eventSalesResponse `json:"topEvents"`
}

func newDashboardResponse(s domain.DashboardSummary) dashboardResponse {
	top := make([]eventSalesResponse, 0, len(s.TopEvents))
	for _, line := range s.TopEvents {
		top = append(top, eventSalesResponse(line))
	}
	return dashboardResponse{
		TotalEvents:     s.TotalEvents,
		PublishedEvents: s.PublishedEvents,
		CompletedOrders: s.CompletedOrders,
		CanceledOrders:  s.CanceledOrders,
		TicketsIssued:   s.TicketsIssued,
		TicketsUsed:     s.TicketsUsed,
		Revenue:         s.Revenue,
		TotalSeats:      s.TotalSeats,
		AvailableSeats:  s.AvailableSeats,
		TopEvents:       top,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
