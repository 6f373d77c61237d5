package handler

import (
	"net/http"

	"github.com/ValHeil/kartensets/internal/api/response"
	"github.com/ValHeil/kartensets/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// Get returns the selectable boards and cardsets.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Get(r.Context())
	if err != nil {
		response.Error(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	response.OK(w, c)
}
