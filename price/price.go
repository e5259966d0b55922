// Copyright (c) 2025 BVK Chaitanya

// Package price fetches spot prices from CoinMarketCap with a static
// fallback table. Price lookups never fail.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceMock          Source = "mock"
	SourceCoinMarketCap Source = "coinmarketcap"
)

const DefaultCurrency = "USD"

var fallbackPrices = map[string]decimal.Decimal{
	"BTC":  decimal.NewFromInt(68000),
	"ETH":  decimal.NewFromInt(3500),
	"SOL":  decimal.NewFromInt(150),
	"USDT": decimal.NewFromInt(1),
}

var quotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cryptowatch_price_quotes_total",
		Help: "Total number of spot price quotes by source",
	},
	[]string{"source"},
)

// SpotPrice is a point-in-time price quote.
type SpotPrice struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Source   Source          `json:"source"`
	AsOf     time.Time       `json:"asOf"`
}

type Options struct {
	// APIKey is the CoinMarketCap api key. When empty, all prices come from
	// the fallback table.
	APIKey string

	// Endpoint is the CoinMarketCap api base url.
	Endpoint string

	// Timeout bounds each provider request.
	Timeout time.Duration

	Clock clock.Clock

	HTTPClient *http.Client
}

func (v *Options) setDefaults() {
	if v.Endpoint == "" {
		v.Endpoint = "https://pro-api.coinmarketcap.com"
	}
	if v.Timeout == 0 {
		v.Timeout = 5 * time.Second
	}
	if v.Clock == nil {
		v.Clock = clock.New()
	}
	if v.HTTPClient == nil {
		v.HTTPClient = http.DefaultClient
	}
}

func (v *Options) Check() error {
	if v.Timeout < 0 {
		return fmt.Errorf("price timeout cannot be negative: %w", os.ErrInvalid)
	}
	u, err := url.Parse(v.Endpoint)
	if err != nil {
		return fmt.Errorf("could not parse price endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("price endpoint %q must be an absolute url: %w", v.Endpoint, os.ErrInvalid)
	}
	return nil
}

type Service struct {
	opts Options
}

func New(opts *Options) (*Service, error) {
	if opts == nil {
		opts = new(Options)
	}
	v := *opts
	v.setDefaults()
	if err := v.Check(); err != nil {
		return nil, err
	}
	return &Service{opts: v}, nil
}

// Fallback returns the static fallback price for a symbol or zero.
func Fallback(symbol string) decimal.Decimal {
	if v, ok := fallbackPrices[strings.ToUpper(symbol)]; ok {
		return v
	}
	return decimal.Zero
}

// FetchSpotPrice returns the latest price of symbol in currency, which
// defaults to USD. When the provider is not configured or fails, the
// fallback table is used.
func (s *Service) FetchSpotPrice(ctx context.Context, symbol, currency string) *SpotPrice {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	if s.opts.APIKey == "" {
		return s.fallback(symbol, currency)
	}

	quote, err := s.fetchQuote(ctx, symbol, currency)
	if err != nil {
		slog.WarnContext(ctx, "could not fetch spot price from coinmarketcap (using fallback)", "symbol", symbol, "currency", currency, "fallback", Fallback(symbol), "err", err)
		return s.fallback(symbol, currency)
	}

	quotesTotal.WithLabelValues(string(SourceCoinMarketCap)).Inc()
	asOf := s.opts.Clock.Now().UTC()
	if at, err := time.Parse(time.RFC3339Nano, quote.LastUpdated); err == nil {
		asOf = at
	}
	return &SpotPrice{
		Symbol:   symbol,
		Price:    quote.Price,
		Currency: currency,
		Source:   SourceCoinMarketCap,
		AsOf:     asOf,
	}
}

func (s *Service) fallback(symbol, currency string) *SpotPrice {
	quotesTotal.WithLabelValues(string(SourceMock)).Inc()
	return &SpotPrice{
		Symbol:   symbol,
		Price:    Fallback(symbol),
		Currency: currency,
		Source:   SourceMock,
		AsOf:     s.opts.Clock.Now().UTC(),
	}
}

type quote struct {
	Price       decimal.Decimal `json:"price"`
	LastUpdated string          `json:"last_updated"`
}

type quotesResponse struct {
	Data map[string]struct {
		Quote map[string]*quote `json:"quote"`
	} `json:"data"`
}

func (s *Service) fetchQuote(ctx context.Context, symbol, currency string) (*quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	values := make(url.Values)
	values.Set("symbol", symbol)
	values.Set("convert", currency)
	addr := strings.TrimSuffix(s.opts.Endpoint, "/") + "/v1/cryptocurrency/quotes/latest?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create quotes request: %w", err)
	}
	req.Header.Set("X-CMC_PRO_API_KEY", s.opts.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, data)
	}

	var qr quotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("could not decode quotes response: %w", err)
	}
	data, ok := qr.Data[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote data for symbol %s: %w", symbol, os.ErrNotExist)
	}
	if q, ok := data.Quote[currency]; ok && q != nil {
		return q, nil
	}
	if q, ok := data.Quote[DefaultCurrency]; ok && q != nil {
		return q, nil
	}
	return nil, fmt.Errorf("no %s or %s quote for symbol %s: %w", currency, DefaultCurrency, symbol, os.ErrNotExist)
}
