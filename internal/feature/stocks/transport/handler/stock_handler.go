// Package handler exposes the stock search and quote endpoints.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k1300k/smart-stocks/internal/api"
	"github.com/k1300k/smart-stocks/internal/feature/stocks/domain"
	"github.com/k1300k/smart-stocks/internal/feature/stocks/usecase"
)

const maxBatchSymbols = 20

// StockUsecase is the capability this handler needs.
type StockUsecase interface {
	Search(ctx context.Context, query, market string) ([]domain.SearchResult, error)
	GetPrice(ctx context.Context, symbol string) (*domain.StockInfo, error)
}

// StockHandler serves the stock endpoints.
type StockHandler struct {
	usecase StockUsecase
}

// NewStockHandler creates a StockHandler.
func NewStockHandler(u StockUsecase) *StockHandler {
	return &StockHandler{usecase: u}
}

// Search handles symbol search.
// GET /api/stocks/search?q=<query>&market=<KRX|NYSE|NASDAQ>
func (h *StockHandler) Search(c *gin.Context) {
	query := c.Query("q")
	market := c.Query("market")

	results, err := h.usecase.Search(c.Request.Context(), query, market)
	if err != nil {
		slog.Error("stock search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "stock search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetPrice handles a single-symbol quote lookup.
// GET /api/stocks/price/:symbol
func (h *StockHandler) GetPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	info, err := h.usecase.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, usecase.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown symbol"})
			return
		}
		slog.Error("price lookup failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "price lookup failed"})
		return
	}
	c.JSON(http.StatusOK, info)
}

type batchPriceRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}

// GetBatchPrices handles a multi-symbol quote lookup, capped at 20 symbols.
// Unknown symbols are skipped rather than failing the batch.
// POST /api/stocks/batch-price
func (h *StockHandler) GetBatchPrices(c *gin.Context) {
	var req batchPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbols array is required"})
		return
	}
	if len(req.Symbols) > maxBatchSymbols {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "too many symbols, max 20"})
		return
	}

	infos := make([]*domain.StockInfo, 0, len(req.Symbols))
	for _, symbol := range req.Symbols {
		info, err := h.usecase.GetPrice(c.Request.Context(), symbol)
		if err != nil {
			slog.Warn("batch price lookup skipped symbol", "symbol", symbol, "error", err)
			continue
		}
		infos = append(infos, info)
	}
	c.JSON(http.StatusOK, gin.H{"results": infos})
}
