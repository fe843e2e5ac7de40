package services

import (
	"context"
	"fmt"

	"babysteps/internal/api"
	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/state"
)

// ProfileService fronts the user record. Reads go through the session's
// container; writes refresh it.
type ProfileService struct {
	backend backend.Backend
	logger  *log.Logger
}

func NewProfileService(b backend.Backend, logger *log.Logger) *ProfileService {
	return &ProfileService{
		backend: b,
		logger:  logger.WithComponent(log.ComponentProfile),
	}
}

// Get returns the profile, preferring the session's cached copy.
func (s *ProfileService) Get(ctx context.Context, containers *state.Containers, userID int64) (core.Profile, error) {
	if cached, ok := containers.Profile.Get(); ok {
		return cached, nil
	}

	containers.Profile.SetLoading(true)
	defer containers.Profile.SetLoading(false)

	profile, err := s.backend.GetUser(ctx, userID)
	if err != nil {
		return core.Profile{}, fmt.Errorf("get user: %w", err)
	}

	containers.Profile.Set(profile)
	return profile, nil
}

// Update applies a partial profile update and refreshes the cached copy.
func (s *ProfileService) Update(ctx context.Context, containers *state.Containers, userID int64, patch api.UserPatch) (core.Profile, error) {
	if patch.Country != nil && patch.PostalCode != nil {
		if err := core.ValidatePostalCode(*patch.Country, *patch.PostalCode); err != nil {
			return core.Profile{}, err
		}
	}
	if patch.BudgetPreference != nil && !patch.BudgetPreference.Valid() {
		return core.Profile{}, fmt.Errorf("invalid budget preference %q", *patch.BudgetPreference)
	}

	updated, err := s.backend.PatchUser(ctx, userID, patch)
	if err != nil {
		return core.Profile{}, fmt.Errorf("patch user: %w", err)
	}

	containers.Profile.Set(updated)
	if _, ok := containers.Auth.User(); ok {
		containers.Auth.SetUser(updated)
	}

	s.logger.InfoContext(ctx, "Profile updated", log.FieldUserID, userID)
	return updated, nil
}
