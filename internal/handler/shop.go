package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/ticketing-server/internal/repository"
)

// ShopHandler serves per-shop catalog statistics.
type ShopHandler struct {
	Shows *repository.ShowRepo
}

func NewShopHandler(shows *repository.ShowRepo) *ShopHandler {
	return &ShopHandler{Shows: shows}
}

// Stats returns counts of synchronized shows, events and categories for
// one shop.
func (h *ShopHandler) Stats(c echo.Context) error {
	shopID := c.Param("shopId")
	if shopID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shopId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Shows.StatsByShop(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
