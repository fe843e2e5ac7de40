package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"babysteps/internal/api"
	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
)

// FinanceService owns the one-record-per-user questionnaire collection and
// its child contribution rows. The backend only exposes list/create/update,
// so the find-then-branch upsert lives here; a singleflight group keyed by
// user id keeps concurrent saves from racing a create against itself.
type FinanceService struct {
	backend backend.Backend
	group   singleflight.Group
	logger  *log.Logger
}

func NewFinanceService(b backend.Backend, logger *log.Logger) *FinanceService {
	return &FinanceService{
		backend: b,
		logger:  logger.WithComponent(log.ComponentFinance),
	}
}

// Load returns the user's finance response, or found=false when the user
// has not completed the questionnaire yet.
func (s *FinanceService) Load(ctx context.Context, userID int64) (core.FinanceResponse, bool, error) {
	responses, err := s.backend.ListResponses(ctx)
	if err != nil {
		return core.FinanceResponse{}, false, fmt.Errorf("list responses: %w", err)
	}
	for _, resp := range responses {
		if resp.UserID == userID {
			return resp, true, nil
		}
	}
	return core.FinanceResponse{}, false, nil
}

// LoadChildren returns the user's child contribution rows, ordered by
// child id.
func (s *FinanceService) LoadChildren(ctx context.Context, userID int64) ([]core.ChildContribution, error) {
	children, err := s.backend.ListChildren(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// Save upserts the finance response and the child rows. Saving twice in a
// row with the same answers yields one update, not a duplicate record.
func (s *FinanceService) Save(ctx context.Context, userID int64, resp core.FinanceResponse, children []core.ChildContribution) (core.FinanceResponse, error) {
	resp.UserID = userID

	key := fmt.Sprintf("save:%d", userID)
	v, err, _ := s.group.Do(key, func() (any, error) {
		saved, err := s.upsertResponse(ctx, userID, resp)
		if err != nil {
			return core.FinanceResponse{}, err
		}
		if err := s.upsertChildren(ctx, userID, children); err != nil {
			return core.FinanceResponse{}, err
		}
		return saved, nil
	})
	if err != nil {
		return core.FinanceResponse{}, err
	}

	saved := v.(core.FinanceResponse)
	s.logger.InfoContext(ctx, "Finance response saved",
		log.FieldUserID, userID,
		log.FieldResponseID, saved.ResponseID)
	return saved, nil
}

func (s *FinanceService) upsertResponse(ctx context.Context, userID int64, resp core.FinanceResponse) (core.FinanceResponse, error) {
	existing, found, err := s.Load(ctx, userID)
	if err != nil {
		return core.FinanceResponse{}, err
	}

	if found {
		resp.ResponseID = existing.ResponseID
		updated, err := s.backend.UpdateResponse(ctx, existing.ResponseID, resp)
		if err != nil {
			return core.FinanceResponse{}, fmt.Errorf("update response: %w", err)
		}
		return updated, nil
	}

	created, err := s.backend.CreateResponse(ctx, resp)
	if err != nil {
		return core.FinanceResponse{}, fmt.Errorf("create response: %w", err)
	}
	return created, nil
}

// upsertChildren writes the rows one at a time so a mid-sequence failure
// leaves earlier rows saved with their assigned ids.
func (s *FinanceService) upsertChildren(ctx context.Context, userID int64, children []core.ChildContribution) error {
	for i := range children {
		children[i].UserID = userID

		if children[i].ChildID == 0 {
			created, err := s.backend.CreateChild(ctx, children[i])
			if err != nil {
				return fmt.Errorf("create child %d: %w", i+1, err)
			}
			children[i].ChildID = created.ChildID
			continue
		}

		patch := childPatch(children[i])
		if _, err := s.backend.PatchChild(ctx, children[i].ChildID, patch); err != nil {
			return fmt.Errorf("update child %d: %w", children[i].ChildID, err)
		}
	}
	return nil
}

func childPatch(c core.ChildContribution) api.ChildPatch {
	return api.ChildPatch{
		ChildName:                &c.ChildName,
		ParentName:               &c.ParentName,
		TotalContributionPlanned: &c.TotalContributionPlanned,
		MonthlyContribution:      &c.MonthlyContribution,
		ContributedAsPlanned:     &c.ContributedAsPlanned,
	}
}
