// Package handler exposes the mind-map endpoints: a settled-layout snapshot
// and a live websocket session.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k1300k/smart-stocks/internal/api"
	"github.com/k1300k/smart-stocks/internal/feature/mindmap/domain"
	"github.com/k1300k/smart-stocks/internal/feature/mindmap/usecase"
	jwtmw "github.com/k1300k/smart-stocks/internal/platform/jwt"
)

const (
	defaultViewportWidth  = 1200
	defaultViewportHeight = 800
)

// MindmapHandler serves the mind-map snapshot endpoint.
type MindmapHandler struct {
	usecase usecase.MindmapUsecase
}

// NewMindmapHandler creates a MindmapHandler.
func NewMindmapHandler(u usecase.MindmapUsecase) *MindmapHandler {
	return &MindmapHandler{usecase: u}
}

// Get returns the annotated tree and a settled layout.
// GET /api/mindmap?view=sector|profitLoss|theme&width=&height=
func (h *MindmapHandler) Get(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	view := domain.ParseViewMode(c.Query("view"))
	width := floatQuery(c, "width", defaultViewportWidth)
	height := floatQuery(c, "height", defaultViewportHeight)

	tree, layout, err := h.usecase.BuildLayout(c.Request.Context(), userID, view, width, height)
	if err != nil {
		slog.Error("mindmap build failed", "user_id", userID, "view", view, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to build mind map"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view":   view,
		"tree":   tree,
		"layout": layout,
	})
}

func floatQuery(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
