// Package adapters contains external-provider and cache implementations for
// the exchange-rate feature.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/k1300k/smart-stocks/internal/feature/exchangerate/usecase"
	platformhttp "github.com/k1300k/smart-stocks/internal/platform/http"
)

const defaultBaseURL = "https://api.exchangerate-api.com/v4"

// exchangeRateAPI fetches the USD→KRW rate from exchangerate-api.com.
type exchangeRateAPI struct {
	baseURL string
	client  *http.Client
}

// NewExchangeRateAPI creates a RateSource backed by exchangerate-api.com.
// baseURL may be empty, in which case the public endpoint is used.
func NewExchangeRateAPI(baseURL string) usecase.RateSource {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &exchangeRateAPI{
		baseURL: baseURL,
		client:  platformhttp.NewHTTPClient(5 * time.Second),
	}
}

var _ usecase.RateSource = (*exchangeRateAPI)(nil)

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRate requests the latest USD rates and extracts KRW.
func (a *exchangeRateAPI) FetchRate(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/latest/USD", a.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange rate API status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode exchange rate response: %w", err)
	}

	rate, ok := body.Rates["KRW"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("KRW rate missing in response")
	}
	return rate, nil
}
