// Copyright (c) 2023 BVK Chaitanya

// Package coinbase implements exchange.Client for Coinbase Advanced Trade
// REST APIs. Only spot accounts are supported, so transactions and
// positions are not declared.
package coinbase

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/exchange/internal/rest"
	"golang.org/x/time/rate"

	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

const Name = "coinbase"

// RestURL is the base url for Coinbase Advanced Trade REST apis.
var RestURL = url.URL{
	Scheme: "https",
	Host:   "api.coinbase.com",
	Path:   "/api/v3/brokerage",
}

var capabilities = exchange.Capabilities{
	exchange.FetchOpenOrders: true,
}

type Client struct {
	kid string

	signer jose.Signer

	baseURL url.URL

	rest *rest.Client
}

var _ exchange.Client = &Client{}

type nonceSource struct{}

func (n nonceSource) Nonce() (string, error) {
	r, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// New creates a Coinbase client. API key is the CDP key name and secret is
// the PEM encoded EC private key.
func New(creds *exchange.Credentials, opts *exchange.Options) (exchange.Client, error) {
	if creds == nil || creds.APIKey == "" || creds.Secret == "" {
		return nil, fmt.Errorf("coinbase api key and secret are required: %w", os.ErrInvalid)
	}
	opts = opts.WithDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	block, _ := pem.Decode([]byte(strings.ReplaceAll(creds.Secret, `\n`, "\n")))
	if block == nil {
		return nil, fmt.Errorf("could not parse the PEM private key: %w", os.ErrInvalid)
	}
	priKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("could not parse the EC private key: %w", err)
	}
	return newWithKey(creds.APIKey, priKey, opts)
}

func newWithKey(kid string, priKey *ecdsa.PrivateKey, opts *exchange.Options) (*Client, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: priKey},
		(&jose.SignerOptions{NonceSource: nonceSource{}}).WithType("JWT").WithHeader("kid", kid),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create jwt signer: %w", err)
	}
	c := &Client{
		kid:     kid,
		signer:  signer,
		baseURL: RestURL,
	}
	c.rest = rest.New(Name, opts, rate.Limit(25), c.sign)
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

type apiKeyClaims struct {
	*jwt.Claims
	URI string `json:"uri"`
}

func (c *Client) sign(req *http.Request, _ []byte) error {
	now := time.Now()
	cl := &apiKeyClaims{
		Claims: &jwt.Claims{
			Subject:   c.kid,
			Issuer:    "cdp",
			NotBefore: jwt.NewNumericDate(now),
			Expiry:    jwt.NewNumericDate(now.Add(2 * time.Minute)),
		},
		URI: fmt.Sprintf("%s %s%s", req.Method, req.URL.Host, req.URL.Path),
	}
	token, err := jwt.Signed(c.signer).Claims(cl).CompactSerialize()
	if err != nil {
		return fmt.Errorf("could not create signed jwt token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) FetchTransactions(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Transaction, error) {
	return nil, fmt.Errorf("coinbase transactions: %w", exchange.ErrNotSupported)
}

func (c *Client) FetchPositions(ctx context.Context, symbols []string) ([]*exchange.Position, error) {
	return nil, fmt.Errorf("coinbase positions: %w", exchange.ErrNotSupported)
}

// FetchOpenOrders lists open orders, following the pagination cursor until
// the limit is reached or there are no more orders.
func (c *Client) FetchOpenOrders(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Order, error) {
	if opts == nil {
		opts = new(exchange.FetchOptions)
	}
	values := make(url.Values)
	values.Set("order_status", "OPEN")
	if opts.Symbol != "" {
		values.Set("product_ids", productID(opts.Symbol))
	}
	if !opts.Since.IsZero() {
		values.Set("start_date", opts.Since.UTC().Format(time.RFC3339))
	}
	if opts.Limit > 0 {
		values.Set("limit", strconv.Itoa(opts.Limit))
	}

	var orders []*exchange.Order
	for {
		addrURL := &url.URL{
			Scheme:   c.baseURL.Scheme,
			Host:     c.baseURL.Host,
			Path:     c.baseURL.Path + "/orders/historical/batch",
			RawQuery: values.Encode(),
		}
		resp := new(listOrdersResponse)
		if err := c.rest.GetJSON(ctx, addrURL, resp); err != nil {
			return nil, fmt.Errorf("could not list open orders: %w", err)
		}
		for _, v := range resp.Orders {
			orders = append(orders, v.order())
		}
		if opts.Limit > 0 && len(orders) >= opts.Limit {
			return orders[:opts.Limit], nil
		}
		if !resp.HasNext || resp.Cursor == "" {
			return orders, nil
		}
		values.Set("cursor", resp.Cursor)
	}
}

// productID converts a unified symbol (BTC/USD) into the product id
// (BTC-USD).
func productID(symbol string) string {
	base, quote := exchange.SplitSymbol(symbol)
	if quote == "" {
		return base
	}
	return base + "-" + quote
}
