package facades

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/shopspring/decimal"
)

// DefaultExchangeRatesURL is the free latest-rates feed, queried as {url}/{BASE}.
const DefaultExchangeRatesURL = "https://open.er-api.com/v6/latest"

// ExchangeRatesHTTPFacade reads exchange rates from a JSON latest-rates feed.
type ExchangeRatesHTTPFacade struct {
	client  *http.Client
	baseURL string
}

// NewExchangeRatesHTTPFacade creates a facade for the feed at baseURL.
// timeout bounds every request; zero disables it.
func NewExchangeRatesHTTPFacade(baseURL string, timeout time.Duration) *ExchangeRatesHTTPFacade {
	if baseURL == "" {
		baseURL = DefaultExchangeRatesURL
	}
	return &ExchangeRatesHTTPFacade{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type latestRatesResponse struct {
	Result    string                 `json:"result"`
	ErrorType string                 `json:"error-type"`
	BaseCode  string                 `json:"base_code"`
	Rates     map[string]json.Number `json:"rates"`
}

// GetExchangeRateForCurrency fetches the latest rates for fromCurrency and picks toCurrency.
func (f *ExchangeRatesHTTPFacade) GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	endpoint := f.baseURL + "/" + url.PathEscape(fromCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Log.Errorw("failed to fetch exchange rates via HTTP", "url", endpoint, "error", err)
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Errorw("unexpected exchange rates response", "url", endpoint, "status", resp.StatusCode)
		return decimal.Zero, fmt.Errorf("exchange rates feed returned status %d", resp.StatusCode)
	}

	var body latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.Log.Errorw("failed to decode exchange rates", "url", endpoint, "error", err)
		return decimal.Zero, err
	}
	if body.Result != "" && body.Result != "success" {
		return decimal.Zero, fmt.Errorf("%w: %s->%s: feed error %q", ErrRateNotFound, fromCurrency, toCurrency, body.ErrorType)
	}

	raw, ok := body.Rates[toCurrency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrRateNotFound, fromCurrency, toCurrency)
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %s->%s: %w", fromCurrency, toCurrency, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrRateNotFound, fromCurrency, toCurrency)
	}

	logger.Log.Debugw("exchange rate fetched via HTTP", "from", fromCurrency, "to", toCurrency, "rate", rate)
	return rate, nil
}
