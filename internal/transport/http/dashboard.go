package http

import (
	"context"
	"net/http"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/go-chi/chi/v5"
)

type DashboardService interface {
	Summary(ctx context.Context) (domain.DashboardSummary, error)
	OrganizerSummary(ctx context.Context, organizerID string) (domain.DashboardSummary, error)
}

func HandleDashboard(svc DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newDashboardResponse(summary))
	}
}

func HandleOrganizerDashboard(svc DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.OrganizerSummary(r.Context(), chi.URLParam(r, "organizerId"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newDashboardResponse(summary))
	}
}
