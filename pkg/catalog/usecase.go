package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrScopeRequired rejects catalog reads without a scope.
var ErrScopeRequired = errors.New("scope is required")

// UseCase fetches the authoritative catalog snapshot for a scope.
type UseCase interface {
	Snapshot(ctx context.Context, scope string) ([]JobPosting, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Snapshot(ctx context.Context, scope string) ([]JobPosting, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, ErrScopeRequired
	}
	return s.repo.List(ctx, scope)
}
