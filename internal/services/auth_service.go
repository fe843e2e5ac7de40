package services

import (
	"context"
	"fmt"

	"babysteps/internal/api"
	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/session"
	"babysteps/internal/state"
)

// AuthService owns the login, registration, logout and session rehydration
// flows. Tokens and the user id are persisted in the session store; the
// in-memory containers hold the live copies.
type AuthService struct {
	backend  backend.Backend
	sessions *session.Store
	states   *state.Registry
	logger   *log.Logger
}

func NewAuthService(b backend.Backend, sessions *session.Store, states *state.Registry, logger *log.Logger) *AuthService {
	return &AuthService{
		backend:  b,
		sessions: sessions,
		states:   states,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

// Login authenticates against the backend, persists the session, and
// reports whether the user already has a finance response. Callers route
// to the dashboard when hasResponse is true and to the questionnaire
// otherwise.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (core.Profile, bool, error) {
	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return core.Profile{}, false, fmt.Errorf("login: %w", err)
	}

	// The response probe is best-effort: a failure must not undo a
	// successful authentication.
	hasResponse := false
	authed := api.WithToken(ctx, result.Access)
	if resp, err := s.findResponse(authed, result.User.UserID); err != nil {
		s.logger.WarnContext(ctx, "Finance response probe failed after login",
			log.FieldUserID, result.User.UserID, log.FieldError, err.Error())
	} else {
		hasResponse = resp != nil
	}

	if err := s.sessions.SetTokens(ctx, sid, result.Access, result.Refresh, result.User.UserID); err != nil {
		return core.Profile{}, false, fmt.Errorf("persist session: %w", err)
	}
	if err := s.sessions.SetCompletedBabySteps(ctx, sid, hasResponse); err != nil {
		return core.Profile{}, false, fmt.Errorf("persist session: %w", err)
	}

	containers := s.states.Get(sid)
	containers.Auth.SetAuthenticated(result.Access, result.User)
	containers.Profile.Set(result.User)

	s.logger.InfoContext(ctx, "User logged in",
		log.FieldUserID, result.User.UserID,
		"has_finance_response", hasResponse)

	return result.User, hasResponse, nil
}

// Register creates the account. It does not log the user in; the UI sends
// them to the login page afterwards.
func (s *AuthService) Register(ctx context.Context, reg core.Registration) (core.Profile, error) {
	if err := reg.Validate(); err != nil {
		return core.Profile{}, err
	}

	profile, err := s.backend.Register(ctx, reg)
	if err != nil {
		return core.Profile{}, fmt.Errorf("register: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, profile.UserID)
	return profile, nil
}

// Logout deletes the persisted session row and drops all in-memory state
// for the sid. The stale cookie resolves to a fresh anonymous session on
// the next request.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	s.states.Drop(sid)
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "User logged out", log.FieldSessionID, sid)
	return nil
}

// Hydrate rebuilds the in-memory auth state from the persisted session
// row. The token is restored immediately; the profile fetch completes the
// authenticated state. A dead token clears the session rather than erroring.
func (s *AuthService) Hydrate(ctx context.Context, sid string) (*state.Containers, error) {
	containers := s.states.Get(sid)
	if containers.Auth.IsAuthenticated() {
		return containers, nil
	}

	sess, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return containers, err
	}
	if sess.AccessToken == "" || sess.UserID == 0 {
		return containers, nil
	}

	containers.Auth.SetToken(sess.AccessToken)

	authed := api.WithToken(ctx, sess.AccessToken)
	profile, err := s.backend.GetUser(authed, sess.UserID)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.logger.InfoContext(ctx, "Stored token rejected, clearing session",
				log.FieldSessionID, sid)
			containers.Logout()
			if clearErr := s.sessions.Clear(ctx, sid); clearErr != nil {
				return containers, fmt.Errorf("clear session: %w", clearErr)
			}
			return containers, nil
		}
		return containers, fmt.Errorf("hydrate profile: %w", err)
	}

	containers.Auth.SetUser(profile)
	containers.Profile.Set(profile)
	return containers, nil
}

// findResponse scans the response collection for the user's record. The
// backend has no per-user lookup endpoint for responses.
func (s *AuthService) findResponse(ctx context.Context, userID int64) (*core.FinanceResponse, error) {
	responses, err := s.backend.ListResponses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range responses {
		if responses[i].UserID == userID {
			return &responses[i], nil
		}
	}
	return nil, nil
}
