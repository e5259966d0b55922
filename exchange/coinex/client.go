// Copyright (c) 2025 BVK Chaitanya

// Package coinex implements exchange.Client for CoinEx v2 REST APIs.
package coinex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/exchange/internal/rest"
	"golang.org/x/time/rate"
)

const Name = "coinex"

// RestURL is the base url for CoinEx REST apis. Tests point it to a local
// server.
var RestURL = url.URL{
	Scheme: "https",
	Host:   "api.coinex.com",
	Path:   "/v2",
}

var capabilities = exchange.Capabilities{
	exchange.FetchTransactions: true,
	exchange.FetchPositions:    true,
	exchange.FetchOpenOrders:   true,
}

type Client struct {
	key, secret string

	baseURL url.URL

	rest *rest.Client
}

var _ exchange.Client = &Client{}

// New creates a CoinEx client.
func New(creds *exchange.Credentials, opts *exchange.Options) (exchange.Client, error) {
	if creds == nil || creds.APIKey == "" || creds.Secret == "" {
		return nil, fmt.Errorf("coinex api key and secret are required: %w", os.ErrInvalid)
	}
	opts = opts.WithDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	c := &Client{
		key:     creds.APIKey,
		secret:  creds.Secret,
		baseURL: RestURL,
	}
	c.rest = rest.New(Name, opts, rate.Limit(20), c.sign)
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

// sign adds the CoinEx v2 authentication headers. Signed content is the
// method, path with query, body and the millisecond timestamp.
func (c *Client) sign(req *http.Request, body []byte) error {
	var sb strings.Builder
	sb.WriteString(req.Method)
	sb.WriteString(req.URL.Path)
	if len(req.URL.RawQuery) != 0 {
		sb.WriteRune('?')
		sb.WriteString(req.URL.RawQuery)
	}
	sb.Write(body)

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	sb.WriteString(timestamp)

	hash := hmac.New(sha256.New, []byte(c.secret))
	io.WriteString(hash, sb.String())
	signature := hash.Sum(nil)

	req.Header.Set("X-COINEX-KEY", c.key)
	req.Header.Set("X-COINEX-SIGN", fmt.Sprintf("%x", signature))
	req.Header.Set("X-COINEX-TIMESTAMP", timestamp)
	return nil
}

func (c *Client) endpoint(p string, values url.Values) *url.URL {
	return &url.URL{
		Scheme:   c.baseURL.Scheme,
		Host:     c.baseURL.Host,
		Path:     path.Join(c.baseURL.Path, p),
		RawQuery: values.Encode(),
	}
}

func (c *Client) get(ctx context.Context, p string, values url.Values, data any) error {
	resp := &genericResponse{Data: data}
	if err := c.rest.GetJSON(ctx, c.endpoint(p, values), resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return fmt.Errorf("coinex %s failed with code=%d message=%s", p, resp.Code, resp.Message)
	}
	return nil
}

// FetchTransactions returns deposits and withdrawals merged in time order.
func (c *Client) FetchTransactions(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Transaction, error) {
	if opts == nil {
		opts = new(exchange.FetchOptions)
	}
	values := make(url.Values)
	if opts.Symbol != "" {
		base, _ := exchange.SplitSymbol(opts.Symbol)
		values.Set("ccy", base)
	}
	if opts.Limit > 0 {
		values.Set("limit", strconv.Itoa(opts.Limit))
	}

	var deposits []*depositRecord
	if err := c.get(ctx, "/assets/deposit-history", values, &deposits); err != nil {
		return nil, fmt.Errorf("could not fetch deposit history: %w", err)
	}
	var withdrawals []*withdrawRecord
	if err := c.get(ctx, "/assets/withdraw", values, &withdrawals); err != nil {
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

// FetchPositions returns the open futures positions. Only one symbol filter
// is supported by the exchange.
func (c *Client) FetchPositions(ctx context.Context, symbols []string) ([]*exchange.Position, error) {
	if len(symbols) > 1 {
		return nil, fmt.Errorf("coinex positions accept at most one market filter: %w", exchange.ErrNotSupported)
	}
	values := make(url.Values)
	values.Set("market_type", "FUTURES")
	if len(symbols) == 1 {
		values.Set("market", marketName(symbols[0]))
	}

	var records []*positionRecord
	if err := c.get(ctx, "/futures/pending-position", values, &records); err != nil {
		return nil, fmt.Errorf("could not fetch pending positions: %w", err)
	}
	positions := make([]*exchange.Position, 0, len(records))
	for _, v := range records {
		positions = append(positions, v.position())
	}
	return positions, nil
}

// FetchOpenOrders returns pending spot orders. Since filter is applied
// locally.
func (c *Client) FetchOpenOrders(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Order, error) {
	if opts == nil {
		opts = new(exchange.FetchOptions)
	}
	values := make(url.Values)
	values.Set("market_type", "SPOT")
	if opts.Symbol != "" {
		values.Set("market", marketName(opts.Symbol))
	}
	if opts.Limit > 0 {
		values.Set("limit", strconv.Itoa(opts.Limit))
	}

	var records []*orderRecord
	if err := c.get(ctx, "/spot/pending-order", values, &records); err != nil {
		return nil, fmt.Errorf("could not fetch pending orders: %w", err)
	}
	orders := make([]*exchange.Order, 0, len(records))
	for _, v := range records {
		order := v.order()
		if !opts.Since.IsZero() && order.Timestamp.Before(opts.Since) {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// marketName converts a unified symbol (BTC/USDT) into CoinEx market name
// (BTCUSDT).
func marketName(symbol string) string {
	base, quote := exchange.SplitSymbol(symbol)
	return base + quote
}

func rawJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
