// Package backend selects and constructs the data backend the app talks to:
// the real REST gateway, or the in-memory fake for local development.
package backend

import (
	"context"
	"fmt"
	"time"

	"babysteps/internal/api"
	"babysteps/internal/api/memory"
	"babysteps/internal/api/rest"
)

// Backend bundles every port the services need.
type Backend interface {
	api.AuthGateway
	api.UserGateway
	api.ExpenseGateway
	api.CategoryGateway
	api.ResponseGateway
	api.ChildrenGateway
	api.MilestoneGateway
}

// Type selects the backend implementation.
type Type string

const (
	RESTBackend   Type = "rest"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == RESTBackend || t == MemoryBackend
}

func (t Type) String() string {
	return string(t)
}

// Config holds what backend construction needs.
type Config struct {
	Type Type

	// REST specific.
	BaseURL string
	Timeout time.Duration
}

// New constructs the configured backend.
func New(_ context.Context, cfg Config) (Backend, error) {
	switch cfg.Type {
	case RESTBackend:
		client, err := rest.New(cfg.BaseURL, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("rest backend: %w", err)
		}
		return client, nil
	case MemoryBackend:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
