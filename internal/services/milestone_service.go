package services

import (
	"context"
	"fmt"
	"time"

	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/milestones"
)

// Overview is everything the milestones page needs.
type Overview struct {
	Catalog    []core.Milestone
	Evaluation milestones.Evaluation
	Congrats   bool
}

// MilestoneService recomputes step completion from the questionnaire
// answers on every view. The backend's stored is_completed flags are
// treated as a notification ledger, not as the source of truth.
type MilestoneService struct {
	backend backend.Backend
	finance *FinanceService
	logger  *log.Logger
}

func NewMilestoneService(b backend.Backend, finance *FinanceService, logger *log.Logger) *MilestoneService {
	return &MilestoneService{
		backend: b,
		finance: finance,
		logger:  logger.WithComponent(log.ComponentMilestones),
	}
}

// Evaluate recomputes the user's step completion from their finance
// response, children and salary. A user without a response gets the
// all-false evaluation.
func (s *MilestoneService) Evaluate(ctx context.Context, userID int64, salary core.Decimal) (milestones.Evaluation, error) {
	resp, found, err := s.finance.Load(ctx, userID)
	if err != nil {
		return milestones.Evaluation{}, err
	}
	if !found {
		return milestones.Evaluation{}, nil
	}

	var children []core.ChildContribution
	if resp.HasChildren {
		children, err = s.finance.LoadChildren(ctx, userID)
		if err != nil {
			return milestones.Evaluation{}, err
		}
	}

	eval := milestones.Evaluate(resp, children, salary)
	s.logger.DebugContext(ctx, "Milestones evaluated",
		log.FieldUserID, userID,
		log.FieldCompleted, eval.Completed,
		log.FieldPercentage, eval.Percentage)
	return eval, nil
}

// View assembles the milestones page: catalog, fresh evaluation, and the
// congratulations flag when all six steps are complete. The backend's
// per-user completion records are synced to the fresh evaluation as a side
// effect; a sync failure is logged but never blocks the page.
func (s *MilestoneService) View(ctx context.Context, userID int64, salary core.Decimal, congratsArmed bool) (Overview, error) {
	catalog, err := s.backend.ListMilestones(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list milestones: %w", err)
	}

	eval, err := s.Evaluate(ctx, userID, salary)
	if err != nil {
		return Overview{}, err
	}

	if err := s.syncRecords(ctx, userID, catalog, eval); err != nil {
		s.logger.WarnContext(ctx, "User milestone sync failed",
			log.FieldUserID, userID, log.FieldError, err.Error())
	}

	return Overview{
		Catalog:    catalog,
		Evaluation: eval,
		Congrats:   congratsArmed && eval.AllComplete(),
	}, nil
}

// syncRecords pushes the evaluation into the backend's user milestone
// records, creating missing rows and flipping stale ones.
func (s *MilestoneService) syncRecords(ctx context.Context, userID int64, catalog []core.Milestone, eval milestones.Evaluation) error {
	if len(catalog) == 0 {
		return nil
	}

	records, err := s.backend.ListUserMilestones(ctx, userID)
	if err != nil {
		return fmt.Errorf("list user milestones: %w", err)
	}

	byMilestone := make(map[int64]core.UserMilestone, len(records))
	for _, rec := range records {
		byMilestone[rec.MilestoneID] = rec
	}

	now := time.Now()
	for i, m := range catalog {
		if i >= milestones.StepCount {
			break
		}
		completed := eval.Steps[i]

		rec, exists := byMilestone[m.MilestoneID]
		if !exists {
			um := core.UserMilestone{
				UserID:      userID,
				MilestoneID: m.MilestoneID,
				IsCompleted: completed,
			}
			if completed {
				um.CompletedAt = &now
			}
			if _, err := s.backend.CreateUserMilestone(ctx, um); err != nil {
				return fmt.Errorf("create user milestone %d: %w", m.MilestoneID, err)
			}
			continue
		}

		if rec.IsCompleted == completed {
			continue
		}
		rec.IsCompleted = completed
		if completed {
			rec.CompletedAt = &now
		} else {
			rec.CompletedAt = nil
		}
		if _, err := s.backend.UpdateUserMilestone(ctx, rec.UMID, rec); err != nil {
			return fmt.Errorf("update user milestone %d: %w", rec.UMID, err)
		}
	}

	return nil
}
