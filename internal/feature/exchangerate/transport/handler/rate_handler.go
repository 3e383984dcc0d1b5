// Package handler exposes the exchange-rate endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k1300k/smart-stocks/internal/api"
	"github.com/k1300k/smart-stocks/internal/feature/exchangerate/usecase"
)

// RateHandler serves the USD→KRW exchange-rate endpoints.
type RateHandler struct {
	service *usecase.Service
}

// NewRateHandler creates a RateHandler.
func NewRateHandler(service *usecase.Service) *RateHandler {
	return &RateHandler{service: service}
}

// Get returns the current rate, its freshness, and the manual flag.
// GET /api/exchange-rate/usd-krw
func (h *RateHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Get())
}

// Refresh forces a fetch from the provider, releasing any manual pin.
// POST /api/exchange-rate/refresh
func (h *RateHandler) Refresh(c *gin.Context) {
	if _, err := h.service.Refresh(c.Request.Context(), true); err != nil {
		// The service keeps the last good rate on failure; report it
		// with a warning instead of failing the request.
		slog.Warn("forced exchange rate refresh failed", "error", err)
	}
	c.JSON(http.StatusOK, h.service.Get())
}

type manualRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

// SetManual pins the rate to a user-supplied value.
// PUT /api/exchange-rate/manual
func (h *RateHandler) SetManual(c *gin.Context) {
	var req manualRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.service.SetManual(req.Rate); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.Get())
}

// ClearManual releases the manual pin and refreshes from the provider.
// DELETE /api/exchange-rate/manual
func (h *RateHandler) ClearManual(c *gin.Context) {
	if _, err := h.service.ClearManual(c.Request.Context()); err != nil {
		slog.Warn("exchange rate refresh after clearing manual pin failed", "error", err)
	}
	c.JSON(http.StatusOK, h.service.Get())
}
