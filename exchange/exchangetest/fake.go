// Copyright (c) 2025 BVK Chaitanya

// Package exchangetest provides an in-memory exchange.Client for tests.
package exchangetest

import (
	"context"
	"sync/atomic"

	"github.com/bvk/cryptowatch/exchange"
)

// Client is a fake exchange client that returns canned results.
type Client struct {
	Name string

	Capabilities exchange.Capabilities

	Transactions []*exchange.Transaction
	Positions    []*exchange.Position
	Orders       []*exchange.Order

	// Err, when non-nil, is returned by all fetch operations.
	Err error

	calls  atomic.Int64
	closed atomic.Bool

	// LastSymbols holds the symbols from the most recent FetchPositions call.
	LastSymbols []string

	// LastOptions holds the options from the most recent FetchTransactions
	// or FetchOpenOrders call.
	LastOptions *exchange.FetchOptions
}

var _ exchange.Client = &Client{}

// Calls returns the number of fetch operations invoked.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

func (c *Client) Closed() bool {
	return c.closed.Load()
}

func (c *Client) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Client) ExchangeID() string {
	return c.Name
}

func (c *Client) Has(v exchange.Capability) bool {
	return c.Capabilities.Has(v)
}

func (c *Client) FetchTransactions(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Transaction, error) {
	c.calls.Add(1)
	c.LastOptions = opts
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Transactions, nil
}

func (c *Client) FetchPositions(ctx context.Context, symbols []string) ([]*exchange.Position, error) {
	c.calls.Add(1)
	c.LastSymbols = symbols
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Positions, nil
}

func (c *Client) FetchOpenOrders(ctx context.Context, opts *exchange.FetchOptions) ([]*exchange.Order, error) {
	c.calls.Add(1)
	c.LastOptions = opts
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Orders, nil
}

// Registry returns an exchange registry with a single exchange that always
// returns the input client. The returned counter tracks the number of
// constructor invocations.
func Registry(name string, client *Client) (*exchange.Registry, *atomic.Int64) {
	var count atomic.Int64
	r := exchange.NewRegistry()
	r.Register(name, func(*exchange.Credentials, *exchange.Options) (exchange.Client, error) {
		count.Add(1)
		return client, nil
	})
	return r, &count
}
