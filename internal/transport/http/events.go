package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/go-chi/chi/v5"
)

// EventService is the minimal interface needed for the event endpoints.
type EventService interface {
	CreateEvent(ctx context.Context, def domain.EventDefinition) (domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListEvents(ctx context.Context, publishedOnly bool) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	SearchEvents(ctx context.Context, search domain.EventSearch) ([]domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetAvailability(ctx context.Context, eventID string) (domain.Availability, error)
	Publish(ctx context.Context, eventID string) (domain.Event, error)
	UpdateDefinition(ctx context.Context, eventID string, def domain.EventDefinition) (domain.Event, error)
}

type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"startDateTime"`
	EndsAt      *time.Time `json:"endDateTime"`
	VenueID     string     `json:"venueId"`
	OrganizerID string     `json:"organizerId"`
	Categories  []string   `json:"categories"`
	ImageURL    string     `json:"imageUrl"`
	TotalSeats  int        `json:"totalSeats"`
	BasePrice   float64    `json:"basePrice"`
}

func (req eventRequest) definition() domain.EventDefinition {
	def := domain.EventDefinition{
		Title:       req.Title,
		Description: req.Description,
		VenueID:     req.VenueID,
		OrganizerID: req.OrganizerID,
		Categories:  req.Categories,
		ImageURL:    req.ImageURL,
		TotalSeats:  req.TotalSeats,
		BasePrice:   req.BasePrice,
	}
	if req.StartsAt != nil {
		def.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		def.EndsAt = req.EndsAt.UTC()
	}
	return def
}

func HandleCreateEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		event, err := svc.CreateEvent(r.Context(), req.definition())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEventResponse(event))
	}
}

// HandleListEvents lists every event, or only published ones with ?published=true.
func HandleListEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publishedOnly := false
		if raw := r.URL.Query().Get("published"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidArgument, "published must be a boolean")
				return
			}
			publishedOnly = parsed
		}
		events, err := svc.ListEvents(r.Context(), publishedOnly)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponses(events))
	}
}

// HandleSearchEvents filters published events by the first of title,
// category or venue that is set, or lists upcoming ones when none is.
func HandleSearchEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		events, err := svc.SearchEvents(r.Context(), domain.EventSearch{
			Title:    q.Get("title"),
			Category: q.Get("category"),
			VenueID:  q.Get("venue"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponses(events))
	}
}

func HandleListOrganizerEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListByOrganizer(r.Context(), chi.URLParam(r, "organizerId"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponses(events))
	}
}

func HandleGetEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleEventAvailability(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetAvailability(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, availabilityResponse{
			EventID:        a.EventID,
			TotalSeats:     a.TotalSeats,
			AvailableSeats: a.AvailableSeats,
		})
	}
}

// HandleUpdateEvent replaces the event definition. Seats already sold stay sold.
func HandleUpdateEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		event, err := svc.UpdateDefinition(r.Context(), chi.URLParam(r, "id"), req.definition())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleDeleteEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandlePublishEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.Publish(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}
