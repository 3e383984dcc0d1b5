package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/usecase"
	jwtmw "github.com/k1300k/smart-stocks/internal/platform/jwt"
)

// mockPortfolioUsecase is a mock implementation of the PortfolioUsecase interface.
type mockPortfolioUsecase struct {
	GetFunc           func(ctx context.Context, userID uint) (*entity.Portfolio, error)
	AddHoldingFunc    func(ctx context.Context, userID uint, h entity.Holding) (*entity.Portfolio, error)
	UpdateHoldingFunc func(ctx context.Context, userID uint, symbol string, upd entity.HoldingUpdate) (*entity.Portfolio, error)
	RemoveHoldingFunc func(ctx context.Context, userID uint, symbol string) (*entity.Portfolio, error)
	RefreshPricesFunc func(ctx context.Context, userID uint) (*entity.Portfolio, int, error)
	ExportCSVFunc     func(ctx context.Context, userID uint) (string, error)
	ExportJSONFunc    func(ctx context.Context, userID uint) ([]byte, error)
	ImportCSVFunc     func(ctx context.Context, userID uint, content string, mode usecase.ImportMode) (int, error)
	ImportJSONFunc    func(ctx context.Context, userID uint, data []byte, mode usecase.ImportMode) (int, error)
}

func (m *mockPortfolioUsecase) Get(ctx context.Context, userID uint) (*entity.Portfolio, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return entity.NewPortfolio(userID), nil
}

func (m *mockPortfolioUsecase) AddHolding(ctx context.Context, userID uint, h entity.Holding) (*entity.Portfolio, error) {
	if m.AddHoldingFunc != nil {
		return m.AddHoldingFunc(ctx, userID, h)
	}
	return entity.NewPortfolio(userID), nil
}

func (m *mockPortfolioUsecase) UpdateHolding(ctx context.Context, userID uint, symbol string, upd entity.HoldingUpdate) (*entity.Portfolio, error) {
	if m.UpdateHoldingFunc != nil {
		return m.UpdateHoldingFunc(ctx, userID, symbol, upd)
	}
	return entity.NewPortfolio(userID), nil
}

func (m *mockPortfolioUsecase) RemoveHolding(ctx context.Context, userID uint, symbol string) (*entity.Portfolio, error) {
	if m.RemoveHoldingFunc != nil {
		return m.RemoveHoldingFunc(ctx, userID, symbol)
	}
	return entity.NewPortfolio(userID), nil
}

func (m *mockPortfolioUsecase) RefreshPrices(ctx context.Context, userID uint) (*entity.Portfolio, int, error) {
	if m.RefreshPricesFunc != nil {
		return m.RefreshPricesFunc(ctx, userID)
	}
	return entity.NewPortfolio(userID), 0, nil
}

func (m *mockPortfolioUsecase) ExportCSV(ctx context.Context, userID uint) (string, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, userID)
	}
	return "", nil
}

func (m *mockPortfolioUsecase) ExportJSON(ctx context.Context, userID uint) ([]byte, error) {
	if m.ExportJSONFunc != nil {
		return m.ExportJSONFunc(ctx, userID)
	}
	return []byte("{}"), nil
}

func (m *mockPortfolioUsecase) ImportCSV(ctx context.Context, userID uint, content string, mode usecase.ImportMode) (int, error) {
	if m.ImportCSVFunc != nil {
		return m.ImportCSVFunc(ctx, userID, content, mode)
	}
	return 0, nil
}

func (m *mockPortfolioUsecase) ImportJSON(ctx context.Context, userID uint, data []byte, mode usecase.ImportMode) (int, error) {
	if m.ImportJSONFunc != nil {
		return m.ImportJSONFunc(ctx, userID, data, mode)
	}
	return 0, nil
}

// setupRouter registers the handler routes behind a stub auth context.
func setupRouter(h *PortfolioHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, uint(1))
	})
	r.GET("/portfolio", h.Get)
	r.POST("/portfolio/holdings", h.AddHolding)
	r.PUT("/portfolio/holdings/:symbol", h.UpdateHolding)
	r.DELETE("/portfolio/holdings/:symbol", h.RemoveHolding)
	r.POST("/portfolio/refresh-prices", h.RefreshPrices)
	r.GET("/portfolio/export/csv", h.ExportCSV)
	r.POST("/portfolio/import/csv", h.ImportCSV)
	return r
}

func samplePortfolio() *entity.Portfolio {
	p := entity.NewPortfolio(1)
	p.AddHolding(entity.Holding{
		Symbol: "005930", Name: "삼성전자", Quantity: 10,
		AvgPriceKrw: 65000, CurrentPriceKrw: 70000,
	})
	return p
}

func TestPortfolioHandler_Get(t *testing.T) {
	t.Run("success: returns portfolio with valuations", func(t *testing.T) {
		mockUC := &mockPortfolioUsecase{
			GetFunc: func(ctx context.Context, userID uint) (*entity.Portfolio, error) {
				return samplePortfolio(), nil
			},
		}
		router := setupRouter(NewPortfolioHandler(mockUC))

		req, _ := http.NewRequest(http.MethodGet, "/portfolio", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp portfolioResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Holdings, 1)
		assert.Equal(t, "005930", resp.Holdings[0].Symbol)
		// 10 shares, 65000 -> 70000
		assert.Equal(t, 700000.0, resp.Holdings[0].ValueKrw)
		assert.Equal(t, 50000.0, resp.Holdings[0].ProfitLossKrw)
	})

	t.Run("failure: usecase error", func(t *testing.T) {
		mockUC := &mockPortfolioUsecase{
			GetFunc: func(ctx context.Context, userID uint) (*entity.Portfolio, error) {
				return nil, errors.New("db down")
			},
		}
		router := setupRouter(NewPortfolioHandler(mockUC))

		req, _ := http.NewRequest(http.MethodGet, "/portfolio", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPortfolioHandler_AddHolding(t *testing.T) {
	tests := []struct {
		name           string
		body           gin.H
		mockErr        error
		expectedStatus int
	}{
		{
			name:           "success",
			body:           gin.H{"symbol": "AAPL", "name": "Apple Inc.", "quantity": 2, "avgPriceUsd": 180},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate symbol",
			body:           gin.H{"symbol": "005930", "name": "삼성전자", "quantity": 1},
			mockErr:        entity.ErrDuplicateSymbol,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid holding",
			body:           gin.H{"symbol": "", "name": "", "quantity": 1},
			mockErr:        entity.ErrInvalidHolding,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockPortfolioUsecase{
				AddHoldingFunc: func(ctx context.Context, userID uint, h entity.Holding) (*entity.Portfolio, error) {
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return samplePortfolio(), nil
				},
			}
			router := setupRouter(NewPortfolioHandler(mockUC))

			body, _ := json.Marshal(tt.body)
			req, _ := http.NewRequest(http.MethodPost, "/portfolio/holdings", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPortfolioHandler_UpdateHolding(t *testing.T) {
	t.Run("unknown symbol returns 404", func(t *testing.T) {
		mockUC := &mockPortfolioUsecase{
			UpdateHoldingFunc: func(ctx context.Context, userID uint, symbol string, upd entity.HoldingUpdate) (*entity.Portfolio, error) {
				return nil, entity.ErrHoldingNotFound
			},
		}
		router := setupRouter(NewPortfolioHandler(mockUC))

		body, _ := json.Marshal(gin.H{"quantity": 5})
		req, _ := http.NewRequest(http.MethodPut, "/portfolio/holdings/ZZZZ", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("symbol is taken from the path", func(t *testing.T) {
		var gotSymbol string
		mockUC := &mockPortfolioUsecase{
			UpdateHoldingFunc: func(ctx context.Context, userID uint, symbol string, upd entity.HoldingUpdate) (*entity.Portfolio, error) {
				gotSymbol = symbol
				return samplePortfolio(), nil
			},
		}
		router := setupRouter(NewPortfolioHandler(mockUC))

		body, _ := json.Marshal(gin.H{"quantity": 5})
		req, _ := http.NewRequest(http.MethodPut, "/portfolio/holdings/005930", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "005930", gotSymbol)
	})
}

func TestPortfolioHandler_RemoveHolding(t *testing.T) {
	mockUC := &mockPortfolioUsecase{
		RemoveHoldingFunc: func(ctx context.Context, userID uint, symbol string) (*entity.Portfolio, error) {
			return nil, entity.ErrHoldingNotFound
		},
	}
	router := setupRouter(NewPortfolioHandler(mockUC))

	req, _ := http.NewRequest(http.MethodDelete, "/portfolio/holdings/ZZZZ", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioHandler_RefreshPrices(t *testing.T) {
	mockUC := &mockPortfolioUsecase{
		RefreshPricesFunc: func(ctx context.Context, userID uint) (*entity.Portfolio, int, error) {
			return samplePortfolio(), 1, nil
		},
	}
	router := setupRouter(NewPortfolioHandler(mockUC))

	req, _ := http.NewRequest(http.MethodPost, "/portfolio/refresh-prices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Updated int `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Updated)
}

func TestPortfolioHandler_ExportCSV(t *testing.T) {
	mockUC := &mockPortfolioUsecase{
		ExportCSVFunc: func(ctx context.Context, userID uint) (string, error) {
			return "\uFEFF종목코드,종목명\n", nil
		},
	}
	router := setupRouter(NewPortfolioHandler(mockUC))

	req, _ := http.NewRequest(http.MethodGet, "/portfolio/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "portfolio.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestPortfolioHandler_ImportCSV(t *testing.T) {
	t.Run("mode defaults to replace, merge via query", func(t *testing.T) {
		var gotMode usecase.ImportMode
		mockUC := &mockPortfolioUsecase{
			ImportCSVFunc: func(ctx context.Context, userID uint, content string, mode usecase.ImportMode) (int, error) {
				gotMode = mode
				return 2, nil
			},
		}
		router := setupRouter(NewPortfolioHandler(mockUC))

		req, _ := http.NewRequest(http.MethodPost, "/portfolio/import/csv", strings.NewReader("종목코드\n"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecase.ImportReplace, gotMode)

		req, _ = http.NewRequest(http.MethodPost, "/portfolio/import/csv?mode=merge", strings.NewReader("종목코드\n"))
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecase.ImportMerge, gotMode)
	})

	t.Run("unparseable document returns 400", func(t *testing.T) {
		mockUC := &mockPortfolioUsecase{
			ImportCSVFunc: func(ctx context.Context, userID uint, content string, mode usecase.ImportMode) (int, error) {
				return 0, errors.New("unrecognized csv header")
			},
		}
		router := setupRouter(NewPortfolioHandler(mockUC))

		req, _ := http.NewRequest(http.MethodPost, "/portfolio/import/csv", strings.NewReader("bogus"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
