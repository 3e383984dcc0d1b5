// Package router wires the HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "github.com/k1300k/smart-stocks/internal/feature/auth/transport/handler"
	ratehandler "github.com/k1300k/smart-stocks/internal/feature/exchangerate/transport/handler"
	mindmaphandler "github.com/k1300k/smart-stocks/internal/feature/mindmap/transport/handler"
	portfoliohandler "github.com/k1300k/smart-stocks/internal/feature/portfolio/transport/handler"
	stockhandler "github.com/k1300k/smart-stocks/internal/feature/stocks/transport/handler"
	jwtmw "github.com/k1300k/smart-stocks/internal/platform/jwt"
)

// Handlers bundles every transport handler the router mounts.
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Portfolio *portfoliohandler.PortfolioHandler
	Rate      *ratehandler.RateHandler
	Stocks    *stockhandler.StockHandler
	Mindmap   *mindmaphandler.MindmapHandler
}

// NewRouter builds the gin engine with CORS and the public and JWT-guarded
// route groups.
func NewRouter(corsOrigin, jwtSecret string, h Handlers) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if corsOrigin == "" || corsOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{corsOrigin}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/signup", h.Auth.Signup)
	r.POST("/api/auth/login", h.Auth.Login)

	auth := r.Group("/api")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.GET("/auth/me", h.Auth.Me)

		auth.GET("/portfolio", h.Portfolio.Get)
		auth.POST("/portfolio/holdings", h.Portfolio.AddHolding)
		auth.PUT("/portfolio/holdings/:symbol", h.Portfolio.UpdateHolding)
		auth.DELETE("/portfolio/holdings/:symbol", h.Portfolio.RemoveHolding)
		auth.POST("/portfolio/refresh-prices", h.Portfolio.RefreshPrices)
		auth.GET("/portfolio/export/csv", h.Portfolio.ExportCSV)
		auth.GET("/portfolio/export/json", h.Portfolio.ExportJSON)
		auth.POST("/portfolio/import/csv", h.Portfolio.ImportCSV)
		auth.POST("/portfolio/import/json", h.Portfolio.ImportJSON)

		auth.GET("/exchange-rate/usd-krw", h.Rate.Get)
		auth.POST("/exchange-rate/refresh", h.Rate.Refresh)
		auth.PUT("/exchange-rate/manual", h.Rate.SetManual)
		auth.DELETE("/exchange-rate/manual", h.Rate.ClearManual)

		auth.GET("/stocks/search", h.Stocks.Search)
		auth.GET("/stocks/price/:symbol", h.Stocks.GetPrice)
		auth.POST("/stocks/batch-price", h.Stocks.GetBatchPrices)

		auth.GET("/mindmap", h.Mindmap.Get)
		auth.GET("/mindmap/live", h.Mindmap.Live)
	}

	return r
}
