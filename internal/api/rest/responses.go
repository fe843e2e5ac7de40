package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"babysteps/internal/api"
	"babysteps/internal/core"
)

func (c *Client) ListResponses(ctx context.Context) ([]core.FinanceResponse, error) {
	var responses []core.FinanceResponse
	if err := c.do(ctx, http.MethodGet, "/api/user-responses/", nil, nil, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (c *Client) CreateResponse(ctx context.Context, resp core.FinanceResponse) (core.FinanceResponse, error) {
	var created core.FinanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/user-responses/", nil, resp, &created); err != nil {
		return core.FinanceResponse{}, err
	}
	return created, nil
}

func (c *Client) UpdateResponse(ctx context.Context, responseID int64, resp core.FinanceResponse) (core.FinanceResponse, error) {
	var updated core.FinanceResponse
	path := fmt.Sprintf("/api/user-responses/%d/", responseID)
	if err := c.do(ctx, http.MethodPatch, path, nil, resp, &updated); err != nil {
		return core.FinanceResponse{}, err
	}
	return updated, nil
}

func (c *Client) ListChildren(ctx context.Context, userID int64) ([]core.ChildContribution, error) {
	query := url.Values{}
	if userID > 0 {
		query.Set("user_id", strconv.FormatInt(userID, 10))
	}
	var children []core.ChildContribution
	if err := c.do(ctx, http.MethodGet, "/api/children-contributions/", query, nil, &children); err != nil {
		return nil, err
	}
	return children, nil
}

func (c *Client) CreateChild(ctx context.Context, child core.ChildContribution) (core.ChildContribution, error) {
	var created core.ChildContribution
	if err := c.do(ctx, http.MethodPost, "/api/children-contributions/", nil, child, &created); err != nil {
		return core.ChildContribution{}, err
	}
	return created, nil
}

func (c *Client) PatchChild(ctx context.Context, childID int64, patch api.ChildPatch) (core.ChildContribution, error) {
	var updated core.ChildContribution
	path := fmt.Sprintf("/api/children-contributions/%d/", childID)
	if err := c.do(ctx, http.MethodPatch, path, nil, patch, &updated); err != nil {
		return core.ChildContribution{}, err
	}
	return updated, nil
}

func (c *Client) ListMilestones(ctx context.Context) ([]core.Milestone, error) {
	var milestones []core.Milestone
	if err := c.do(ctx, http.MethodGet, "/api/milestones/", nil, nil, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (c *Client) ListUserMilestones(ctx context.Context, userID int64) ([]core.UserMilestone, error) {
	query := url.Values{}
	if userID > 0 {
		query.Set("user_id", strconv.FormatInt(userID, 10))
	}
	var records []core.UserMilestone
	if err := c.do(ctx, http.MethodGet, "/api/user-milestones/", query, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateUserMilestone(ctx context.Context, um core.UserMilestone) (core.UserMilestone, error) {
	var created core.UserMilestone
	if err := c.do(ctx, http.MethodPost, "/api/user-milestones/", nil, um, &created); err != nil {
		return core.UserMilestone{}, err
	}
	return created, nil
}

func (c *Client) UpdateUserMilestone(ctx context.Context, umid int64, um core.UserMilestone) (core.UserMilestone, error) {
	var updated core.UserMilestone
	path := fmt.Sprintf("/api/user-milestones/%d/", umid)
	if err := c.do(ctx, http.MethodPatch, path, nil, um, &updated); err != nil {
		return core.UserMilestone{}, err
	}
	return updated, nil
}
