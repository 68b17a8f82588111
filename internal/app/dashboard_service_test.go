package app

import (
	"context"
	"errors"
	"testing"

	"github.com/cimillas/boxoffice/internal/domain"
)

type stubDashboardRepo struct {
	organizerID string
	top         int
	summary     domain.DashboardSummary
	err         error
}

func (r *stubDashboardRepo) Summary(_ context.Context, organizerID string, top int) (domain.DashboardSummary, error) {
	r.organizerID = organizerID
	r.top = top
	return r.summary, r.err
}

func TestDashboardService_Summary(t *testing.T) {
	t.Parallel()

	repo := &stubDashboardRepo{summary: domain.DashboardSummary{TotalEvents: 3, Revenue: 150}}
	svc := NewDashboardService(repo)

	got, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalEvents != 3 || got.Revenue != 150 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if repo.organizerID != "" || repo.top != dashboardTopEvents {
		t.Fatalf("expected global summary with top %d, got organizer=%q top=%d", dashboardTopEvents, repo.organizerID, repo.top)
	}
}

func TestDashboardService_OrganizerSummary(t *testing.T) {
	t.Parallel()

	repo := &stubDashboardRepo{}
	svc := NewDashboardService(repo)

	if _, err := svc.OrganizerSummary(context.Background(), "org-1"); err != nil {
		t.Fatalf("organizer summary: %v", err)
	}
	if repo.organizerID != "org-1" {
		t.Fatalf("expected organizer scope, got %q", repo.organizerID)
	}

	if _, err := svc.OrganizerSummary(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	repo.err = errors.New("db down")
	if _, err := svc.OrganizerSummary(context.Background(), "org-1"); err == nil {
		t.Fatalf("expected repository error to surface")
	}
}
