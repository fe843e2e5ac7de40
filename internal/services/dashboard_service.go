package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/milestones"
)

// DashboardData is everything the dashboard page renders.
type DashboardData struct {
	Summary    core.DashboardSummary
	Monthly    core.MonthlySummary
	Evaluation milestones.Evaluation
}

// DashboardService aggregates the three backend calls the dashboard needs.
// The calls are independent, so they run concurrently; the first failure
// cancels the rest.
type DashboardService struct {
	backend    backend.Backend
	milestones *MilestoneService
	logger     *log.Logger
}

func NewDashboardService(b backend.Backend, ms *MilestoneService, logger *log.Logger) *DashboardService {
	return &DashboardService{
		backend:    b,
		milestones: ms,
		logger:     logger.WithComponent(log.ComponentDashboard),
	}
}

// Load fetches the dashboard summary, the monthly budget summary, and a
// fresh milestone evaluation in parallel.
func (s *DashboardService) Load(ctx context.Context, userID int64, salary core.Decimal) (DashboardData, error) {
	var data DashboardData

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.backend.Dashboard(gctx)
		if err != nil {
			return fmt.Errorf("dashboard summary: %w", err)
		}
		data.Summary = summary
		return nil
	})

	g.Go(func() error {
		monthly, err := s.backend.MonthlySummary(gctx)
		if err != nil {
			return fmt.Errorf("monthly summary: %w", err)
		}
		data.Monthly = monthly
		return nil
	})

	g.Go(func() error {
		eval, err := s.milestones.Evaluate(gctx, userID, salary)
		if err != nil {
			return fmt.Errorf("evaluate milestones: %w", err)
		}
		data.Evaluation = eval
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardData{}, err
	}

	return data, nil
}
