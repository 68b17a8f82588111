package app

import (
	"context"

	"github.com/cimillas/boxoffice/internal/domain"
)

const dashboardTopEvents = 5

type DashboardRepository interface {
	Summary(ctx context.Context, organizerID string, top int) (domain.DashboardSummary, error)
}

// DashboardService serves read-only sales figures.
type DashboardService struct {
	repo DashboardRepository
	opts options
}

func NewDashboardService(repo DashboardRepository, opts ...Option) *DashboardService {
	return &DashboardService{repo: repo, opts: buildOptions(opts)}
}

func (s *DashboardService) Summary(ctx context.Context) (domain.DashboardSummary, error) {
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.Summary(ctx, "", dashboardTopEvents)
}

func (s *DashboardService) OrganizerSummary(ctx context.Context, organizerID string) (domain.DashboardSummary, error) {
	if organizerID == "" {
		return domain.DashboardSummary{}, domain.ErrInvalidID
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()

	return s.repo.Summary(ctx, organizerID, dashboardTopEvents)
}
