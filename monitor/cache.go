// Copyright (c) 2025 BVK Chaitanya

package monitor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bvk/cryptowatch/accounts"
	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/syncmap"
	"golang.org/x/sync/singleflight"
)

// ClientCache lazily creates one exchange client per account id. Clients
// are never evicted.
type ClientCache struct {
	dir *accounts.Directory

	registry *exchange.Registry

	opts exchange.Options

	group singleflight.Group

	clientMap syncmap.Map[string, exchange.Client]
}

// NewClientCache creates a client cache. Exchange options apply to all
// clients, but rate limiting is always enabled.
func NewClientCache(dir *accounts.Directory, registry *exchange.Registry, opts *exchange.Options) *ClientCache {
	v := opts.WithDefaults()
	v.DisableRateLimit = false
	return &ClientCache{
		dir:      dir,
		registry: registry,
		opts:     *v,
	}
}

// Close closes all cached clients.
func (c *ClientCache) Close() error {
	var errs []error
	for _, id := range c.clientMap.Keys() {
		if client, ok := c.clientMap.LoadAndDelete(id); ok {
			if err := client.Close(); err != nil {
				slog.Error("could not close exchange client", "account", id, "exchange", client.ExchangeID(), "err", err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Get returns the client for an account, creating it on first use.
// Concurrent first calls for the same account create the client only once.
func (c *ClientCache) Get(ctx context.Context, accountID string) (exchange.Client, error) {
	if client, ok := c.clientMap.Load(accountID); ok {
		return client, nil
	}

	account, ok := c.dir.Find(accountID)
	if !ok {
		return nil, &Error{Kind: KindAccountNotFound, AccountID: accountID, Err: ErrAccountNotFound}
	}
	newClient, ok := c.registry.Lookup(account.Exchange)
	if !ok {
		return nil, &Error{Kind: KindUnsupportedExchange, AccountID: accountID, ExchangeID: account.Exchange, Err: ErrUnsupportedExchange}
	}

	v, err, _ := c.group.Do(accountID, func() (any, error) {
		if client, ok := c.clientMap.Load(accountID); ok {
			return client, nil
		}
		client, err := newClient(account.Credentials(), &c.opts)
		if err != nil {
			return nil, err
		}
		c.clientMap.Store(accountID, client)
		slog.DebugContext(ctx, "created new exchange client", "account", account)
		return client, nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "could not create exchange client", "account", account, "err", err)
		return nil, &Error{Kind: KindUpstream, AccountID: accountID, ExchangeID: account.Exchange, Err: err}
	}
	return v.(exchange.Client), nil
}
