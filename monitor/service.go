// Copyright (c) 2025 BVK Chaitanya

// Package monitor queries exchange account data through cached exchange
// clients and classifies failures into a small set of error kinds.
package monitor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cryptowatch_monitor_requests_total",
		Help: "Total number of account monitoring requests by operation and outcome",
	},
	[]string{"operation", "outcome"},
)

type Service struct {
	cache *ClientCache
}

func NewService(cache *ClientCache) *Service {
	return &Service{cache: cache}
}

// FetchTransactions returns deposits and withdrawals of an account.
func (s *Service) FetchTransactions(ctx context.Context, accountID string, opts *exchange.FetchOptions) ([]*exchange.Transaction, error) {
	return invoke(ctx, s, accountID, exchange.FetchTransactions, func(c exchange.Client) ([]*exchange.Transaction, error) {
		return c.FetchTransactions(ctx, opts)
	})
}

// FetchPositions returns open positions of an account, optionally limited to
// one symbol.
func (s *Service) FetchPositions(ctx context.Context, accountID string, symbol string) ([]*exchange.Position, error) {
	var symbols []string
	if symbol != "" {
		symbols = []string{symbol}
	}
	return invoke(ctx, s, accountID, exchange.FetchPositions, func(c exchange.Client) ([]*exchange.Position, error) {
		return c.FetchPositions(ctx, symbols)
	})
}

// FetchOpenOrders returns open orders of an account.
func (s *Service) FetchOpenOrders(ctx context.Context, accountID string, opts *exchange.FetchOptions) ([]*exchange.Order, error) {
	return invoke(ctx, s, accountID, exchange.FetchOpenOrders, func(c exchange.Client) ([]*exchange.Order, error) {
		return c.FetchOpenOrders(ctx, opts)
	})
}

// invoke runs an operation on an account's client after checking that the
// client declares the capability. Results are returned unmodified.
func invoke[T any](ctx context.Context, s *Service, accountID string, op exchange.Capability, call func(exchange.Client) (T, error)) (_ T, status error) {
	var zero T
	defer func() {
		outcome := "ok"
		if status != nil {
			outcome = KindOf(status).String()
		}
		requestsTotal.WithLabelValues(string(op), outcome).Inc()
	}()

	client, err := s.cache.Get(ctx, accountID)
	if err != nil {
		return zero, err
	}
	exchangeID := client.ExchangeID()
	if !client.Has(op) {
		return zero, &Error{Kind: KindOperationNotSupported, AccountID: accountID, ExchangeID: exchangeID, Operation: string(op), Err: exchange.ErrNotSupported}
	}

	result, err := call(client)
	if err != nil {
		slog.ErrorContext(ctx, "could not fetch account data from the exchange", "operation", op, "account", accountID, "exchange", exchangeID, "err", err)
		if errors.Is(err, exchange.ErrNotSupported) {
			return zero, &Error{Kind: KindOperationNotSupported, AccountID: accountID, ExchangeID: exchangeID, Operation: string(op), Err: err}
		}
		return zero, &Error{Kind: KindUpstream, AccountID: accountID, ExchangeID: exchangeID, Operation: string(op), Err: err}
	}
	return result, nil
}
