package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultExchangeRateBaseURL is the v6 API root of exchangerate-api.com.
const DefaultExchangeRateBaseURL = "https://v6.exchangerate-api.com/v6"

// ErrQuotaReached is returned when the provider reports an exhausted request quota.
var ErrQuotaReached = errors.New("exchange rate quota reached")

// ExchangeRateClient is a RateSource backed by the exchangerate-api v6 HTTP API.
// It performs one request per call; caching is the Converter's concern.
type ExchangeRateClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
}

// NewExchangeRateClient creates a client. An empty baseURL selects the public endpoint.
func NewExchangeRateClient(httpClient *http.Client, baseURL, apiKey string) *ExchangeRateClient {
	if baseURL == "" {
		baseURL = DefaultExchangeRateBaseURL
	}
	return &ExchangeRateClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type apiStatus struct {
	Result    string `json:"result"`
	ErrorType string `json:"error-type"`
}

func (s apiStatus) err() error {
	if s.Result == "success" {
		return nil
	}
	if s.ErrorType == "quota-reached" {
		return ErrQuotaReached
	}
	if s.ErrorType != "" {
		return fmt.Errorf("exchange rate api error: %s", s.ErrorType)
	}
	return fmt.Errorf("exchange rate api returned result %q", s.Result)
}

type pairResponse struct {
	apiStatus
	ConversionResult *decimal.Decimal `json:"conversion_result"`
}

type latestResponse struct {
	apiStatus
	ConversionRates map[string]json.RawMessage `json:"conversion_rates"`
}

// Convert asks the provider to convert amount from one currency to another.
func (c *ExchangeRateClient) Convert(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s/pair/%s/%s/%s", c.baseURL, c.apiKey, from, to, amount.StringFixed(2))

	var body pairResponse
	if err := c.getJSON(ctx, url, &body); err != nil {
		return decimal.Zero, fmt.Errorf("pair %s/%s: %w", from, to, err)
	}
	if err := body.err(); err != nil {
		return decimal.Zero, fmt.Errorf("pair %s/%s: %w", from, to, err)
	}
	if body.ConversionResult == nil {
		return decimal.Zero, fmt.Errorf("pair %s/%s: missing conversion_result", from, to)
	}
	return *body.ConversionResult, nil
}

// SupportedCodes returns the provider's currency list, sorted.
func (c *ExchangeRateClient) SupportedCodes(ctx context.Context, base string) ([]string, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, base)

	var body latestResponse
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, fmt.Errorf("latest %s: %w", base, err)
	}
	if err := body.err(); err != nil {
		return nil, fmt.Errorf("latest %s: %w", base, err)
	}
	if len(body.ConversionRates) == 0 {
		return nil, fmt.Errorf("latest %s: empty conversion_rates", base)
	}

	codes := make([]string, 0, len(body.ConversionRates))
	for code := range body.ConversionRates {
		codes = append(codes, strings.ToUpper(code))
	}
	sort.Strings(codes)
	return codes, nil
}

func (c *ExchangeRateClient) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var status apiStatus
		if json.Unmarshal(data, &status) == nil && status.Result == "error" {
			return fmt.Errorf("unexpected status %d: %w", resp.StatusCode, status.err())
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
