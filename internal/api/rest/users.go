package rest

import (
	"context"
	"fmt"
	"net/http"

	"babysteps/internal/api"
	"babysteps/internal/core"
)

// Login authenticates against the backend and returns the token pair plus
// the user payload.
func (c *Client) Login(ctx context.Context, email, password string) (api.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result api.LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/users/login/", nil, body, &result); err != nil {
		return api.LoginResult{}, err
	}
	return result, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, reg core.Registration) (core.Profile, error) {
	var created core.Profile
	if err := c.do(ctx, http.MethodPost, "/api/users/register/", nil, reg, &created); err != nil {
		return core.Profile{}, err
	}
	return created, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (core.Profile, error) {
	var profile core.Profile
	path := fmt.Sprintf("/api/users/%d/", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &profile); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

func (c *Client) PatchUser(ctx context.Context, userID int64, patch api.UserPatch) (core.Profile, error) {
	var updated core.Profile
	path := fmt.Sprintf("/api/users/%d/", userID)
	if err := c.do(ctx, http.MethodPatch, path, nil, patch, &updated); err != nil {
		return core.Profile{}, err
	}
	return updated, nil
}

// Dashboard fetches the backend-computed summary for the token's user.
func (c *Client) Dashboard(ctx context.Context) (core.DashboardSummary, error) {
	var summary core.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/users/dashboard/", nil, nil, &summary); err != nil {
		return core.DashboardSummary{}, err
	}
	return summary, nil
}
