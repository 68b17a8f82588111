package domain

// DashboardSummary aggregates sales figures for a set of events.
type DashboardSummary struct {
	TotalEvents     int
	PublishedEvents int
	CompletedOrders int
	CanceledOrders  int
	TicketsIssued   int
	TicketsUsed     int
	Revenue         float64
	TotalSeats      int
	AvailableSeats  int
	TopEvents       []EventSales
}

// EventSales is a per-event line in the dashboard.
type EventSales struct {
	EventID     string
	Title       string
	TicketsSold int
	Revenue     float64
}
