package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptoedu/internal/metrics"
	"cryptoedu/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Common errors
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRateLimited = errors.New("rate limited by coingecko")
)

// APIError is a non-2xx response from CoinGecko.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coingecko endpoint=%s status=%d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap lets callers match 404 and 429 with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RateLimitPerMin int
	HTTPClient      *http.Client
	Logger          *log.Entry
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *log.Entry
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = 30
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewEntry(log.StandardLogger())
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	rps := float64(cfg.RateLimitPerMin) / 60.0
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), cfg.RateLimitPerMin),
		logger:     cfg.Logger.WithField("component", "coingecko"),
	}
}

// FetchSimplePrices returns the USD price and 24h change for each id.
// Ids unknown to CoinGecko are simply absent from the result.
func (c *Client) FetchSimplePrices(ctx context.Context, ids []string) (models.PriceSnapshot, error) {
	params := url.Values{
		"ids":                 {strings.Join(ids, ",")},
		"vs_currencies":       {"usd"},
		"include_24hr_change": {"true"},
	}

	var resp SimplePriceResponse
	if err := c.get(ctx, "simple_price", "/simple/price", params, &resp); err != nil {
		return nil, err
	}

	snapshot := make(models.PriceSnapshot, len(resp))
	for id, q := range resp {
		snapshot[id] = models.PriceQuote{USD: q.USD, USD24hChange: q.USD24hChange}
	}
	return snapshot, nil
}

// FetchCoin returns coin metadata with community and developer data.
func (c *Client) FetchCoin(ctx context.Context, id string) (*CoinResponse, error) {
	params := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"community_data": {"true"},
		"developer_data": {"true"},
		"sparkline":      {"false"},
	}

	var resp CoinResponse
	if err := c.get(ctx, "coin", "/coins/"+url.PathEscape(id), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchMarketChart returns daily USD price, market cap and volume series
// covering the last days days.
func (c *Client) FetchMarketChart(ctx context.Context, id string, days int) (*MarketChartResponse, error) {
	params := url.Values{
		"vs_currency": {"usd"},
		"days":        {fmt.Sprintf("%d", days)},
		"interval":    {"daily"},
	}

	var resp MarketChartResponse
	if err := c.get(ctx, "market_chart", "/coins/"+url.PathEscape(id)+"/market_chart", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cryptoedu/1.0")
	if c.apiKey != "" {
		if strings.Contains(c.baseURL, "pro-api.") {
			req.Header.Set("x-cg-pro-api-key", c.apiKey)
		} else {
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(endpoint, 0, time.Since(start))
		c.logger.WithFields(log.Fields{"endpoint": endpoint, "error": err}).Warn("request failed")
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		var apiErr errorResponse
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		c.logger.WithFields(log.Fields{"endpoint": endpoint, "status": resp.StatusCode}).Warn("upstream returned error status")
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}

	c.logger.WithFields(log.Fields{"endpoint": endpoint, "status": resp.StatusCode}).Debug("request succeeded")
	return nil
}
