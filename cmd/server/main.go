package main

import (
	"log/slog"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/k1300k/smart-stocks/internal/app/router"
	authadapters "github.com/k1300k/smart-stocks/internal/feature/auth/adapters"
	authhandler "github.com/k1300k/smart-stocks/internal/feature/auth/transport/handler"
	authusecase "github.com/k1300k/smart-stocks/internal/feature/auth/usecase"
	rateadapters "github.com/k1300k/smart-stocks/internal/feature/exchangerate/adapters"
	ratehandler "github.com/k1300k/smart-stocks/internal/feature/exchangerate/transport/handler"
	rateusecase "github.com/k1300k/smart-stocks/internal/feature/exchangerate/usecase"
	mindmaphandler "github.com/k1300k/smart-stocks/internal/feature/mindmap/transport/handler"
	mindmapusecase "github.com/k1300k/smart-stocks/internal/feature/mindmap/usecase"
	portfolioadapters "github.com/k1300k/smart-stocks/internal/feature/portfolio/adapters"
	portfoliohandler "github.com/k1300k/smart-stocks/internal/feature/portfolio/transport/handler"
	portfoliousecase "github.com/k1300k/smart-stocks/internal/feature/portfolio/usecase"
	stockadapters "github.com/k1300k/smart-stocks/internal/feature/stocks/adapters"
	stockhandler "github.com/k1300k/smart-stocks/internal/feature/stocks/transport/handler"
	stockusecase "github.com/k1300k/smart-stocks/internal/feature/stocks/usecase"
	"github.com/k1300k/smart-stocks/internal/platform/config"
	platformdb "github.com/k1300k/smart-stocks/internal/platform/db"
	jwtmw "github.com/k1300k/smart-stocks/internal/platform/jwt"
	platformredis "github.com/k1300k/smart-stocks/internal/platform/redis"
	"github.com/k1300k/smart-stocks/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set, set a strong secret in production")
	}

	db, err := platformdb.Open(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}

	var rdb *redisv9.Client
	if tmp, err := platformredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password); err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close redis client", "error", err)
			}
		}()
	}

	// Exchange rate
	rateSource := rateadapters.NewCachingRateSource(
		rateadapters.NewExchangeRateAPI(""), rdb, cfg.ExchangeRate.RefreshInterval)
	rateSvc := rateusecase.NewService(rateSource, cfg.ExchangeRate.RefreshInterval, nil)
	rateUpdater := rateusecase.NewUpdater(rateSvc, cfg.ExchangeRate.RefreshInterval)
	rateUpdater.Start()
	defer rateUpdater.Stop()

	// Stocks
	kis := stockadapters.NewKISClient(cfg.KIS.AppKey, cfg.KIS.AppSecret, cfg.KIS.BaseURL)
	alphaVantage := stockadapters.NewAlphaVantageClient(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL)
	limiter := ratelimiter.NewRateLimiter(30, time.Minute)
	stockUC := stockusecase.NewStockUsecase(kis, alphaVantage, limiter)

	// Auth
	userRepo := authadapters.NewUserSQLite(db)
	jwtGen := jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen)

	// Portfolio
	portfolioRepo := portfolioadapters.NewPortfolioGorm(db, rateSvc)
	priceProvider := portfolioadapters.NewStockPriceProvider(stockUC)
	portfolioUC := portfoliousecase.NewPortfolioUsecase(portfolioRepo, rateSvc, priceProvider)

	// Mindmap
	mindmapUC := mindmapusecase.NewMindmapUsecase(portfolioUC)

	r := router.NewRouter(cfg.Server.CORSOrigin, cfg.Auth.JWTSecret, router.Handlers{
		Auth:      authhandler.NewAuthHandler(authUC),
		Portfolio: portfoliohandler.NewPortfolioHandler(portfolioUC),
		Rate:      ratehandler.NewRateHandler(rateSvc),
		Stocks:    stockhandler.NewStockHandler(stockUC),
		Mindmap:   mindmaphandler.NewMindmapHandler(mindmapUC),
	})

	addr := ":" + cfg.Server.Port
	slog.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
