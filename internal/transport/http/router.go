package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Deps wires the router. Metrics and MetricsHandler may be nil.
type Deps struct {
	Orders    OrderService
	Events    EventService
	Tickets   TicketService
	Dashboard DashboardService

	Logger         *logrus.Logger
	Metrics        RequestObserver
	MetricsHandler http.Handler
	ReadyChecks    map[string]Pinger
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r.Use(middleware.Recoverer)
	r.Use(CorrelationID(logger))
	r.Use(RequestLogger)
	if deps.Metrics != nil {
		r.Use(RequestMetrics(deps.Metrics))
	}
	r.Use(func(next http.Handler) http.Handler { return CORS(deps.CORSOrigins, next) })
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	r.Get("/ready", ReadyHandler(deps.ReadyChecks))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/orders", func(orders chi.Router) {
			orders.Post("/", HandleCreateOrder(deps.Orders))
			orders.Get("/", HandleListOrders(deps.Orders))
			orders.Get("/user/{userId}", HandleListUserOrders(deps.Orders))
			orders.Get("/{id}", HandleGetOrder(deps.Orders))
			orders.Put("/{id}/cancel", HandleCancelOrder(deps.Orders))
		})

		api.Route("/events", func(events chi.Router) {
			events.Post("/", HandleCreateEvent(deps.Events))
			events.Get("/", HandleListEvents(deps.Events))
			events.Get("/search", HandleSearchEvents(deps.Events))
			events.Get("/organizer/{organizerId}", HandleListOrganizerEvents(deps.Events))
			events.Get("/{id}", HandleGetEvent(deps.Events))
			events.Get("/{id}/availability", HandleEventAvailability(deps.Events))
			events.Put("/{id}", HandleUpdateEvent(deps.Events))
			events.Delete("/{id}", HandleDeleteEvent(deps.Events))
			events.Put("/{id}/publish", HandlePublishEvent(deps.Events))
		})

		api.Route("/tickets", func(tickets chi.Router) {
			tickets.Get("/order/{orderId}", HandleListOrderTickets(deps.Tickets))
			tickets.Get("/event/{eventId}", HandleListEventTickets(deps.Tickets))
			tickets.Get("/user/{userId}", HandleListUserTickets(deps.Tickets))
			tickets.Get("/{id}", HandleGetTicket(deps.Tickets))
			tickets.Put("/{id}/use", HandleUseTicket(deps.Tickets))
		})

		api.Route("/dashboard", func(dashboard chi.Router) {
			dashboard.Get("/metrics", HandleDashboard(deps.Dashboard))
			dashboard.Get("/metrics/organizer/{organizerId}", HandleOrganizerDashboard(deps.Dashboard))
		})
	})

	return r
}
