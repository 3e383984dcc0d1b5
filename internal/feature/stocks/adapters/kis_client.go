// Package adapters implements the market data provider clients.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/k1300k/smart-stocks/internal/feature/stocks/domain"
	platformhttp "github.com/k1300k/smart-stocks/internal/platform/http"
)

const defaultKISBaseURL = "https://openapi.koreainvestment.com:9443"

// Access tokens are valid for 24 hours; refresh 5 minutes early.
const kisTokenLifetime = 24*time.Hour - 5*time.Minute

// KISClient talks to the Korea Investment & Securities open API for domestic
// (KRX) quotes and symbol search.
type KISClient struct {
	appKey    string
	appSecret string
	baseURL   string
	client    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewKISClient creates a KISClient. With empty credentials the client reports
// itself unconfigured and every call short-circuits.
func NewKISClient(appKey, appSecret, baseURL string) *KISClient {
	if baseURL == "" {
		baseURL = defaultKISBaseURL
	}
	return &KISClient{
		appKey:    appKey,
		appSecret: appSecret,
		baseURL:   baseURL,
		client:    platformhttp.NewHTTPClient(5 * time.Second),
	}
}

// Configured reports whether API credentials are present.
func (k *KISClient) Configured() bool {
	return k.appKey != "" && k.appSecret != ""
}

type kisTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// token returns a cached access token, fetching a new one when expired.
func (k *KISClient) token(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.accessToken != "" && time.Now().Before(k.tokenExpiry) {
		return k.accessToken, nil
	}

	payload, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     k.appKey,
		"appsecret":  k.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		k.baseURL+"/oauth2/tokenP", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request KIS token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("KIS token endpoint status %d", resp.StatusCode)
	}

	var body kisTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode KIS token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("KIS token response missing access_token")
	}

	k.accessToken = body.AccessToken
	k.tokenExpiry = time.Now().Add(kisTokenLifetime)
	return k.accessToken, nil
}

type kisSearchResponse struct {
	Output []struct {
		Symbol string `json:"pdno"`
		Name   string `json:"prdt_name"`
	} `json:"output"`
}

// Search looks up domestic listings by name or code.
func (k *KISClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	token, err := k.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/uapi/domestic-stock/v1/quotations/search?%s",
		k.baseURL, url.Values{"query": {query}, "seq": {"1"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	k.setAuthHeaders(req, token, "CTPF1002R")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KIS search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KIS search status %d", resp.StatusCode)
	}

	var body kisSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode KIS search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(body.Output))
	for _, item := range body.Output {
		results = append(results, domain.SearchResult{
			Symbol: item.Symbol,
			Name:   item.Name,
			Market: "KRX",
		})
	}
	return results, nil
}

type kisPriceResponse struct {
	Output struct {
		Name         string `json:"prdt_name"`
		CurrentPrice string `json:"stck_prpr"`
		ChangeAmount string `json:"prdy_vrss"`
		ChangeRate   string `json:"prdy_ctrt"`
		Volume       string `json:"acml_vol"`
	} `json:"output"`
}

// Price fetches the current quote for a KRX symbol.
func (k *KISClient) Price(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	token, err := k.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/uapi/domestic-stock/v1/quotations/inquire-price?%s",
		k.baseURL, url.Values{
			"fid_cond_mrkt_div_code": {"J"},
			"fid_input_iscd":         {symbol},
		}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create price request: %w", err)
	}
	k.setAuthHeaders(req, token, "FHKST01010100")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KIS price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KIS price status %d", resp.StatusCode)
	}

	var body kisPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode KIS price response: %w", err)
	}
	if body.Output.CurrentPrice == "" {
		return nil, fmt.Errorf("KIS price response missing quote for %s", symbol)
	}

	price, _ := strconv.ParseFloat(body.Output.CurrentPrice, 64)
	changeAmount, _ := strconv.ParseFloat(body.Output.ChangeAmount, 64)
	changeRate, _ := strconv.ParseFloat(body.Output.ChangeRate, 64)
	volume, _ := strconv.ParseInt(body.Output.Volume, 10, 64)

	return &domain.StockInfo{
		Symbol:       symbol,
		Name:         body.Output.Name,
		CurrentPrice: price,
		ChangeAmount: changeAmount,
		ChangeRate:   changeRate,
		Volume:       volume,
		Currency:     "KRW",
		Market:       "KRX",
	}, nil
}

func (k *KISClient) setAuthHeaders(req *http.Request, token, trID string) {
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", k.appKey)
	req.Header.Set("appsecret", k.appSecret)
	req.Header.Set("tr_id", trID)
}
