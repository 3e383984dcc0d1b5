package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/k1300k/smart-stocks/internal/feature/stocks/domain"
	platformhttp "github.com/k1300k/smart-stocks/internal/platform/http"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageClient serves foreign (US) symbol search and quotes.
type AlphaVantageClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantageClient creates an AlphaVantageClient. The "demo" key counts
// as unconfigured since it only answers canned queries.
func NewAlphaVantageClient(apiKey, baseURL string) *AlphaVantageClient {
	if baseURL == "" {
		baseURL = defaultAlphaVantageBaseURL
	}
	return &AlphaVantageClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  platformhttp.NewHTTPClient(5 * time.Second),
	}
}

// Configured reports whether a usable API key is present.
func (a *AlphaVantageClient) Configured() bool {
	return a.apiKey != "" && a.apiKey != "demo"
}

type avSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
		Region string `json:"4. region"`
	} `json:"bestMatches"`
}

// Search runs SYMBOL_SEARCH against Alpha Vantage.
func (a *AlphaVantageClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	body, err := a.get(ctx, url.Values{
		"function": {"SYMBOL_SEARCH"},
		"keywords": {query},
	})
	if err != nil {
		return nil, err
	}

	var parsed avSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode symbol search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(parsed.BestMatches))
	for _, m := range parsed.BestMatches {
		market := m.Region
		if m.Region == "United States" {
			market = "NASDAQ"
		}
		results = append(results, domain.SearchResult{
			Symbol: m.Symbol,
			Name:   m.Name,
			Market: market,
		})
	}
	return results, nil
}

type avQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// Price runs GLOBAL_QUOTE against Alpha Vantage.
func (a *AlphaVantageClient) Price(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	body, err := a.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var parsed avQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode global quote response: %w", err)
	}

	quote := parsed.GlobalQuote
	if quote.Price == "" {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}

	price, err := strconv.ParseFloat(quote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse quote price %q: %w", quote.Price, err)
	}
	change, _ := strconv.ParseFloat(quote.Change, 64)
	changeRate, _ := strconv.ParseFloat(strings.TrimSuffix(quote.ChangePercent, "%"), 64)
	volume, _ := strconv.ParseInt(quote.Volume, 10, 64)

	return &domain.StockInfo{
		Symbol:       quote.Symbol,
		CurrentPrice: price,
		ChangeAmount: change,
		ChangeRate:   changeRate,
		Volume:       volume,
		Currency:     "USD",
	}, nil
}

func (a *AlphaVantageClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
