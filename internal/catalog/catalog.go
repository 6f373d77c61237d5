// Package catalog serves the external board/cardset catalog with a
// cache in front of the collaborator API.
package catalog

import (
	"context"
	"fmt"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/rs/zerolog/log"
)

// Fetcher retrieves the catalog from the collaborating API.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (*domain.Catalog, error)
}

// Cache stores a fetched catalog. A Get miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context) (*domain.Catalog, error)
	Set(ctx context.Context, catalog *domain.Catalog) error
}

// Service resolves catalog lookups, cache first.
type Service struct {
	fetcher Fetcher
	cache   Cache
}

// NewService creates a catalog service. cache may be nil.
func NewService(fetcher Fetcher, cache Cache) *Service {
	return &Service{fetcher: fetcher, cache: cache}
}

// Get returns the catalog, consulting the cache before the collaborator.
// Cache write failures are logged and swallowed; the catalog itself is
// still returned.
func (s *Service) Get(ctx context.Context) (*domain.Catalog, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("catalog cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	catalog, err := s.fetcher.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalog); err != nil {
			log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return catalog, nil
}

// Board resolves a board key. Absent keys are soft: (nil, nil).
func (s *Service) Board(ctx context.Context, key string) (*domain.Board, error) {
	catalog, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Board(key), nil
}

// Cardset resolves a cardset key. Absent keys are soft: (nil, nil).
func (s *Service) Cardset(ctx context.Context, key string) (*domain.Cardset, error) {
	catalog, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Cardset(key), nil
}
