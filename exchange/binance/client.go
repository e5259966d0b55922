// Copyright (c) 2025 BVK Chaitanya

// Package binance implements exchange.Client for Binance spot, wallet and
// USDⓈ-M futures REST APIs.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/exchange/internal/rest"
	"golang.org/x/time/rate"
)

const Name = "binance"

var (
	SpotURL = url.URL{
		Scheme: "https",
		Host:   "api.binance.com",
	}

	FuturesURL = url.URL{
		Scheme: "https",
		Host:   "fapi.binance.com",
	}
)

// recvWindow is the request validity window in milliseconds.
const recvWindow = "5000"

var capabilities = exchange.Capabilities{
	exchange.FetchTransactions: true,
	exchange.FetchPositions:    true,
	exchange.FetchOpenOrders:   true,
}

type Client struct {
	key, secret string

	spotURL    url.URL
	futuresURL url.URL

	rest *rest.Client

	// public sends unsigned requests.
	public *rest.Client

	// timeOffset is the server time minus the local time in milliseconds.
	timeOffset atomic.Int64

	timeMu     sync.Mutex
	timeSynced bool
}

var _ exchange.Client = &Client{}

// New creates a Binance client.
func New(creds *exchange.Credentials, opts *exchange.Options) (exchange.Client, error) {
	if creds == nil || creds.APIKey == "" || creds.Secret == "" {
		return nil, fmt.Errorf("binance api key and secret are required: %w", os.ErrInvalid)
	}
	opts = opts.WithDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	c := &Client{
		key:        creds.APIKey,
		secret:     creds.Secret,
		spotURL:    SpotURL,
		futuresURL: FuturesURL,
	}
	c.rest = rest.New(Name, opts, rate.Limit(10), c.sign)
	c.public = rest.New(Name, opts, rate.Limit(10), nil)
	return c, nil
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) ExchangeID() string {
	return Name
}

func (c *Client) Has(v exchange.Capability) bool {
	return capabilities.Has(v)
}

// sign appends timestamp, recvWindow and the HMAC-SHA256 signature of the
// query string to the request url.
func (c *Client) sign(req *http.Request, _ []byte) error {
	values := req.URL.Query()
	values.Del("signature")
	values.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli()+c.timeOffset.Load(), 10))
	values.Set("recvWindow", recvWindow)
	query := values.Encode()

	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(query))
	req.URL.RawQuery = query + "&signature=" + hex.EncodeToString(mac.Sum(nil))
	req.Header.Set("X-MBX-APIKEY", c.key)
	return nil
}

// syncTime measures the difference between the exchange and local clocks
// once per client. Failures are logged and retried on the next call; requests
// are then signed with the last known offset.
func (c *Client) syncTime(ctx context.Context) {
	c.timeMu.Lock()
	defer c.timeMu.Unlock()

	if c.timeSynced {
		return
	}

	var resp serverTime
	before := time.Now()
	if err := c.public.GetJSON(ctx, endpoint(c.spotURL, "/api/v3/time", nil), &resp); err != nil {
		slog.WarnContext(ctx, "could not fetch binance server time (using local clock)", "err", err)
		return
	}
	after := time.Now()

	local := before.UnixMilli() + after.Sub(before).Milliseconds()/2
	offset := resp.ServerTime - local
	c.timeOffset.Store(offset)
	c.timeSynced = true
	slog.DebugContext(ctx, "measured binance server time offset", "offset", time.Duration(offset)*time.Millisecond)
}

func endpoint(base url.URL, p string, values url.Values) *url.URL {
	return &url.URL{
		Scheme:   base.Scheme,
		Host:     base.Host,
		Path:     p,
		RawQuery: values.Encode(),
	}
}

// FetchTransactions returns deposits and withdrawals merged in time order.
func (c *Client) FetchTransactions(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Transaction, error) {
	if opts == nil {
		opts = new(exchange.FetchOptions)
	}
	values := make(url.Values)
	if opts.Symbol != "" {
		base, _ := exchange.SplitSymbol(opts.Symbol)
		values.Set("coin", base)
	}
	if !opts.Since.IsZero() {
		values.Set("startTime", strconv.FormatInt(opts.Since.UnixMilli(), 10))
	}
	if opts.Limit > 0 {
		values.Set("limit", strconv.Itoa(opts.Limit))
	}

	c.syncTime(ctx)

	var deposits []*depositRecord
	if err := c.rest.GetJSON(ctx, endpoint(c.spotURL, "/sapi/v1/capital/deposit/hisrec", values), &deposits); err != nil {
		return nil, fmt.Errorf("could not fetch deposit history: %w", err)
	}
	var withdrawals []*withdrawRecord
	if err := c.rest.GetJSON(ctx, endpoint(c.spotURL, "/sapi/v1/capital/withdraw/history", values), &withdrawals); err != nil {
		return nil, fmt.Errorf("could not fetch withdrawal history: %w", err)
	}

	var txs []*exchange.Transaction
	for _, v := range deposits {
		txs = append(txs, v.transaction())
	}
	for _, v := range withdrawals {
		txs = append(txs, v.transaction())
	}
	return exchange.SortTransactions(txs, opts), nil
}

// FetchPositions returns non-zero USDⓈ-M futures positions.
func (c *Client) FetchPositions(ctx context.Context, symbols []string) ([]*exchange.Position, error) {
	values := make(url.Values)
	if len(symbols) == 1 {
		values.Set("symbol", marketName(symbols[0]))
	}

	c.syncTime(ctx)

	var records []*positionRecord
	if err := c.rest.GetJSON(ctx, endpoint(c.futuresURL, "/fapi/v2/positionRisk", values), &records); err != nil {
		return nil, fmt.Errorf("could not fetch position risk: %w", err)
	}

	want := make(map[string]bool)
	for _, s := range symbols {
		want[marketName(s)] = true
	}
	var positions []*exchange.Position
	for _, v := range records {
		if v.PositionAmt.IsZero() {
			continue
		}
		if len(want) > 0 && !want[v.Symbol] {
			continue
		}
		positions = append(positions, v.position())
	}
	return positions, nil
}

// FetchOpenOrders returns open spot orders. Since and limit filters are
// applied locally because the exchange doesn't support them.
func (c *Client) FetchOpenOrders(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Order, error) {
	if opts == nil {
		opts = new(exchange.FetchOptions)
	}
	values := make(url.Values)
	if opts.Symbol != "" {
		values.Set("symbol", marketName(opts.Symbol))
	}

	c.syncTime(ctx)

	var records []*orderRecord
	if err := c.rest.GetJSON(ctx, endpoint(c.spotURL, "/api/v3/openOrders", values), &records); err != nil {
		return nil, fmt.Errorf("could not fetch open orders: %w", err)
	}
	var orders []*exchange.Order
	for _, v := range records {
		order := v.order()
		if !opts.Since.IsZero() && order.Timestamp.Before(opts.Since) {
			continue
		}
		orders = append(orders, order)
		if opts.Limit > 0 && len(orders) == opts.Limit {
			break
		}
	}
	return orders, nil
}

func marketName(symbol string) string {
	base, quote := exchange.SplitSymbol(symbol)
	return base + quote
}
