// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"context"
	"net/http"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/exchange/binance"
	"github.com/bvk/cryptowatch/exchange/coinbase"
	"github.com/bvk/cryptowatch/exchange/coinex"
)

// DefaultExchanges returns a registry with all supported exchanges.
func DefaultExchanges() *exchange.Registry {
	r := exchange.NewRegistry()
	r.Register(binance.Name, binance.New)
	r.Register(coinbase.Name, coinbase.New)
	r.Register(coinex.Name, coinex.New)
	return r
}

func (s *Server) doListAccounts(ctx context.Context, _ *http.Request) ([]*api.AccountItem, error) {
	items := []*api.AccountItem{}
	for _, a := range s.accounts.List() {
		items = append(items, &api.AccountItem{
			ID:       a.ID,
			Exchange: a.Exchange,
			Address:  a.Address,
		})
	}
	return items, nil
}

func (s *Server) doListTransactions(ctx context.Context, r *http.Request) ([]*exchange.Transaction, error) {
	q, err := api.ParseFetchQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	txs, err := s.monitor.FetchTransactions(ctx, r.PathValue("id"), q.Options())
	if err != nil {
		return nil, err
	}
	return nonNil(txs), nil
}

func (s *Server) doListPositions(ctx context.Context, r *http.Request) ([]*exchange.Position, error) {
	positions, err := s.monitor.FetchPositions(ctx, r.PathValue("id"), r.URL.Query().Get("symbol"))
	if err != nil {
		return nil, err
	}
	return nonNil(positions), nil
}

func (s *Server) doListOpenOrders(ctx context.Context, r *http.Request) ([]*exchange.Order, error) {
	q, err := api.ParseFetchQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	orders, err := s.monitor.FetchOpenOrders(ctx, r.PathValue("id"), q.Options())
	if err != nil {
		return nil, err
	}
	return nonNil(orders), nil
}

// nonNil turns nil slices into empty slices so that responses have a json
// array instead of null.
func nonNil[T any](vs []T) []T {
	if vs == nil {
		return []T{}
	}
	return vs
}
