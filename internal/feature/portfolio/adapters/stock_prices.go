package adapters

import (
	"context"

	stocksdomain "github.com/k1300k/smart-stocks/internal/feature/stocks/domain"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/usecase"
)

// StockQuoteService is the slice of the stock feature this adapter needs.
type StockQuoteService interface {
	GetPrice(ctx context.Context, symbol string) (*stocksdomain.StockInfo, error)
}

// stockPriceProvider adapts the stock quote service to the portfolio's
// PriceProvider port.
type stockPriceProvider struct {
	stocks StockQuoteService
}

// NewStockPriceProvider wraps the stock quote service as a PriceProvider.
func NewStockPriceProvider(stocks StockQuoteService) usecase.PriceProvider {
	return &stockPriceProvider{stocks: stocks}
}

var _ usecase.PriceProvider = (*stockPriceProvider)(nil)

func (p *stockPriceProvider) GetPrice(ctx context.Context, symbol string) (*usecase.Quote, error) {
	info, err := p.stocks.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &usecase.Quote{
		Price:      info.CurrentPrice,
		Currency:   info.Currency,
		ChangeRate: info.ChangeRate,
	}, nil
}
