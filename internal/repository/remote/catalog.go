package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ValHeil/kartensets/internal/domain"
)

// FetchCatalog retrieves the board/cardset catalog from the collaborator.
func (c *Client) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	var catalog domain.Catalog
	code, err := c.do(ctx, http.MethodGet, "/catalog", nil, &catalog)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", code)
	}
	return &catalog, nil
}
