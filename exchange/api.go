// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotSupported is returned (possibly wrapped) by a Client when the
// exchange doesn't implement an operation or a filter for the operation.
var ErrNotSupported = errors.New("operation is not supported by the exchange")

// Capability names an account-level read operation that an exchange client
// may or may not support.
type Capability string

const (
	FetchTransactions Capability = "fetchTransactions"
	FetchPositions    Capability = "fetchPositions"
	FetchOpenOrders   Capability = "fetchOpenOrders"
)

// FetchOptions holds optional filters for list operations. Zero values mean
// no filter.
type FetchOptions struct {
	// Symbol is a currency code (ex: BTC) for transactions and a unified
	// market symbol (ex: BTC/USDT) for orders.
	Symbol string

	// Since limits results to records created at or after this time.
	Since time.Time

	// Limit caps the number of returned records.
	Limit int
}

// Transaction is a deposit or a withdrawal.
type Transaction struct {
	ID        string          `json:"id"`
	TxID      string          `json:"txid,omitempty"`
	Type      string          `json:"type"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Network   string          `json:"network,omitempty"`
	Address   string          `json:"address,omitempty"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`

	// Info holds the exchange specific raw record.
	Info json.RawMessage `json:"info,omitempty"`
}

// Position is an open derivatives position.
type Position struct {
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Contracts     decimal.Decimal `json:"contracts"`
	EntryPrice    decimal.Decimal `json:"entryPrice"`
	MarkPrice     decimal.Decimal `json:"markPrice"`
	UnrealizedPnl decimal.Decimal `json:"unrealizedPnl"`
	Leverage      decimal.Decimal `json:"leverage"`
	Timestamp     time.Time       `json:"timestamp"`

	Info json.RawMessage `json:"info,omitempty"`
}

// Order is an order as reported by the exchange.
type Order struct {
	ID            string          `json:"id"`
	ClientOrderID string          `json:"clientOrderId,omitempty"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Price         decimal.Decimal `json:"price"`
	Amount        decimal.Decimal `json:"amount"`
	Filled        decimal.Decimal `json:"filled"`
	Remaining     decimal.Decimal `json:"remaining"`
	Timestamp     time.Time       `json:"timestamp"`

	Info json.RawMessage `json:"info,omitempty"`
}

// Client is an authenticated handle to one exchange account.
type Client interface {
	io.Closer

	// ExchangeID returns the registry name of the exchange.
	ExchangeID() string

	// Has reports whether the exchange declares support for an operation.
	Has(Capability) bool

	FetchTransactions(ctx context.Context, opts *FetchOptions) ([]*Transaction, error)

	// FetchPositions returns open positions. A nil or empty symbols list
	// returns all positions.
	FetchPositions(ctx context.Context, symbols []string) ([]*Position, error)

	FetchOpenOrders(ctx context.Context, opts *FetchOptions) ([]*Order, error)
}

// Credentials hold the API keys for an exchange account. Only APIKey and
// Secret are used by all exchanges.
type Credentials struct {
	APIKey   string
	Secret   string
	Password string
	UID      string
}

// Capabilities is a fixed declared capability set.
type Capabilities map[Capability]bool

func (v Capabilities) Has(c Capability) bool {
	return v[c]
}
