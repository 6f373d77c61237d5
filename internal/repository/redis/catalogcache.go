package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ValHeil/kartensets/internal/domain"
)

const (
	catalogCacheKey = "catalog:boards"
	catalogCacheTTL = 5 * time.Minute
)

// CatalogCache caches the external board/cardset catalog in Redis so the
// dashboard does not hit the collaborator API on every page load.
type CatalogCache struct {
	client *Client
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(client *Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get retrieves the cached catalog. A miss returns (nil, nil).
func (c *CatalogCache) Get(ctx context.Context) (*domain.Catalog, error) {
	data, err := c.client.rdb.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	return &catalog, nil
}

// Set caches the catalog with the standard TTL.
func (c *CatalogCache) Set(ctx context.Context, catalog *domain.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	return c.client.rdb.Set(ctx, catalogCacheKey, data, catalogCacheTTL).Err()
}

// Invalidate removes the cached catalog.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.rdb.Del(ctx, catalogCacheKey).Err()
}
