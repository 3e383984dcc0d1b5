// Package handler provides the HTTP handlers for the portfolio feature.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k1300k/smart-stocks/internal/api"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/usecase"
	jwtmw "github.com/k1300k/smart-stocks/internal/platform/jwt"
)

// PortfolioUsecase defines the portfolio operations the handler depends on.
type PortfolioUsecase interface {
	Get(ctx context.Context, userID uint) (*entity.Portfolio, error)
	AddHolding(ctx context.Context, userID uint, h entity.Holding) (*entity.Portfolio, error)
	UpdateHolding(ctx context.Context, userID uint, symbol string, upd entity.HoldingUpdate) (*entity.Portfolio, error)
	RemoveHolding(ctx context.Context, userID uint, symbol string) (*entity.Portfolio, error)
	RefreshPrices(ctx context.Context, userID uint) (*entity.Portfolio, int, error)
	ExportCSV(ctx context.Context, userID uint) (string, error)
	ExportJSON(ctx context.Context, userID uint) ([]byte, error)
	ImportCSV(ctx context.Context, userID uint, content string, mode usecase.ImportMode) (int, error)
	ImportJSON(ctx context.Context, userID uint, data []byte, mode usecase.ImportMode) (int, error)
}

// PortfolioHandler handles HTTP requests for portfolio operations.
type PortfolioHandler struct {
	portfolios PortfolioUsecase
}

// NewPortfolioHandler creates a new PortfolioHandler instance.
func NewPortfolioHandler(portfolios PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios}
}

// holdingView is a holding plus its derived valuation figures.
type holdingView struct {
	entity.Holding
	entity.Valuation
}

// portfolioResponse is the portfolio payload with per-holding valuations.
type portfolioResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Holdings        []holdingView `json:"holdings"`
	TotalValue      float64       `json:"totalValue"`
	TotalProfitLoss float64       `json:"totalProfitLoss"`
}

func toResponse(p *entity.Portfolio) portfolioResponse {
	views := make([]holdingView, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		views = append(views, holdingView{Holding: h, Valuation: entity.Valuate(h)})
	}
	return portfolioResponse{
		ID:              p.ID,
		Name:            p.Name,
		Holdings:        views,
		TotalValue:      p.TotalValue,
		TotalProfitLoss: p.TotalProfitLoss,
	}
}

// Get returns the authenticated user's portfolio.
func (h *PortfolioHandler) Get(c *gin.Context) {
	p, err := h.portfolios.Get(c.Request.Context(), c.GetUint(jwtmw.ContextUserID))
	if err != nil {
		slog.Error("portfolio load failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load portfolio"})
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// AddHolding adds a new holding.
// - 400 on validation errors
// - 409 on duplicate symbol
// - 201 with the updated portfolio on success
func (h *PortfolioHandler) AddHolding(c *gin.Context) {
	var holding entity.Holding
	if err := c.ShouldBindJSON(&holding); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	p, err := h.portfolios.AddHolding(c.Request.Context(), c.GetUint(jwtmw.ContextUserID), holding)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrDuplicateSymbol):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "holding already exists"})
		case errors.Is(err, entity.ErrInvalidHolding):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbol and name are required"})
		default:
			slog.Error("add holding failed", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to add holding"})
		}
		return
	}
	c.JSON(http.StatusCreated, toResponse(p))
}

// UpdateHolding applies a partial update to one holding.
func (h *PortfolioHandler) UpdateHolding(c *gin.Context) {
	var upd entity.HoldingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	p, err := h.portfolios.UpdateHolding(c.Request.Context(), c.GetUint(jwtmw.ContextUserID), c.Param("symbol"), upd)
	if err != nil {
		if errors.Is(err, entity.ErrHoldingNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "holding not found"})
			return
		}
		slog.Error("update holding failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update holding"})
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// RemoveHolding deletes one holding.
func (h *PortfolioHandler) RemoveHolding(c *gin.Context) {
	p, err := h.portfolios.RemoveHolding(c.Request.Context(), c.GetUint(jwtmw.ContextUserID), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, entity.ErrHoldingNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "holding not found"})
			return
		}
		slog.Error("remove holding failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to remove holding"})
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// RefreshPrices re-resolves current prices for every holding.
func (h *PortfolioHandler) RefreshPrices(c *gin.Context) {
	p, updated, err := h.portfolios.RefreshPrices(c.Request.Context(), c.GetUint(jwtmw.ContextUserID))
	if err != nil {
		slog.Error("price refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to refresh prices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "portfolio": toResponse(p)})
}

// ExportCSV streams the portfolio as a CSV attachment.
func (h *PortfolioHandler) ExportCSV(c *gin.Context) {
	content, err := h.portfolios.ExportCSV(c.Request.Context(), c.GetUint(jwtmw.ContextUserID))
	if err != nil {
		slog.Error("csv export failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="portfolio.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

// ExportJSON streams the portfolio as a JSON attachment.
func (h *PortfolioHandler) ExportJSON(c *gin.Context) {
	data, err := h.portfolios.ExportJSON(c.Request.Context(), c.GetUint(jwtmw.ContextUserID))
	if err != nil {
		slog.Error("json export failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="portfolio.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// importMode reads the ?mode= query; merge keeps existing holdings.
func importMode(c *gin.Context) usecase.ImportMode {
	if c.Query("mode") == "merge" {
		return usecase.ImportMerge
	}
	return usecase.ImportReplace
}

// ImportCSV accepts a CSV document as the request body.
func (h *PortfolioHandler) ImportCSV(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	count, err := h.portfolios.ImportCSV(c.Request.Context(), c.GetUint(jwtmw.ContextUserID), string(body), importMode(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "import failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// ImportJSON accepts a previously exported JSON document as the request body.
func (h *PortfolioHandler) ImportJSON(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	count, err := h.portfolios.ImportJSON(c.Request.Context(), c.GetUint(jwtmw.ContextUserID), body, importMode(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "import failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}
