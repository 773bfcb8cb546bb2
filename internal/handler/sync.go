package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/ticketing-server/internal/sync"
)

// SyncHandler exposes the catalog synchronization trigger.
type SyncHandler struct {
	Sync *sync.Service
}

func NewSyncHandler(s *sync.Service) *SyncHandler {
	return &SyncHandler{Sync: s}
}

// SyncShop pulls the upstream catalog for one shop and reconciles it into
// the database.  Sync runs can take a while against large catalogs, so the
// timeout here is generous compared to the CRUD endpoints.
func (h *SyncHandler) SyncShop(c echo.Context) error {
	shopID := c.Param("shopId")
	if shopID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shopId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	res, err := h.Sync.SyncShop(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sync data"})
	}
	return c.JSON(http.StatusOK, res)
}
