// Copyright (c) 2023 BVK Chaitanya

// Package server implements the http handlers for exchange account
// monitoring, price watchers and service health.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/bvk/cryptowatch/accounts"
	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/config"
	"github.com/bvk/cryptowatch/monitor"
	"github.com/bvk/cryptowatch/price"
	"github.com/bvk/cryptowatch/watcher"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"
)

type Server struct {
	opts Options

	startTime time.Time

	accounts *accounts.Directory

	cache   *monitor.ClientCache
	monitor *monitor.Service

	watchers *watcher.Registry

	prices *price.Service

	proc *process.Process
}

// New creates the service components from the configuration.
func New(cfg *config.Config, opts *Options) (*Server, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	prices, err := price.New(&price.Options{
		APIKey:   cfg.CoinMarketCapAPIKey,
		Endpoint: opts.PriceEndpoint,
		Clock:    opts.Clock,
	})
	if err != nil {
		return nil, err
	}

	cache := monitor.NewClientCache(cfg.Accounts, opts.Exchanges, cfg.ExchangeOptions())
	s := &Server{
		opts:      *opts,
		startTime: opts.Clock.Now(),
		accounts:  cfg.Accounts,
		cache:     cache,
		monitor:   monitor.NewService(cache),
		watchers:  watcher.New(opts.Clock),
		prices:    prices,
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err != nil {
		slog.Warn("could not open current process info (rss is not reported)", "err", err)
	} else {
		s.proc = p
	}

	if cfg.CoinMarketCapAPIKey == "" {
		slog.Warn("coinmarketcap api key is not configured (spot prices use the fallback table)")
	}
	slog.Info("loaded exchange accounts", "count", cfg.Accounts.Len(), "exchanges", opts.Exchanges.Names())
	return s, nil
}

// Close releases the exchange clients.
func (s *Server) Close() error {
	return s.cache.Close()
}

// HandlerMap returns the http handlers keyed by their ServeMux patterns.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		"/": http.HandlerFunc(notFound),

		"GET " + api.HealthPath:  http.HandlerFunc(s.serveHealth),
		"GET " + api.MetricsPath: promhttp.Handler(),

		"GET " + api.AccountsPath:                        handler(http.StatusOK, s.doListAccounts),
		"GET " + api.AccountsPath + "/{id}/transactions": handler(http.StatusOK, s.doListTransactions),
		"GET " + api.AccountsPath + "/{id}/positions":    handler(http.StatusOK, s.doListPositions),
		"GET " + api.AccountsPath + "/{id}/open-orders":  handler(http.StatusOK, s.doListOpenOrders),

		"GET " + api.WatchersPath:                 handler(http.StatusOK, s.doListWatchers),
		"POST " + api.WatchersPath:                handler(http.StatusCreated, s.doCreateWatcher),
		"GET " + api.WatchersPath + "/{id}":       handler(http.StatusOK, s.doGetWatcher),
		"PATCH " + api.WatchersPath + "/{id}":     handler(http.StatusOK, s.doUpdateWatcher),
		"DELETE " + api.WatchersPath + "/{id}":    handler(http.StatusNoContent, s.doDeleteWatcher),
		"GET " + api.WatchersPath + "/{id}/price": handler(http.StatusOK, s.doGetWatcherPrice),
	}
}

// Handler returns a ServeMux with all handlers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for k, v := range s.HandlerMap() {
		mux.Handle(k, v)
	}
	return mux
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	now := s.opts.Clock.Now()
	resp := &api.HealthResponse{
		Status:     "ok",
		Uptime:     now.Sub(s.startTime).Seconds(),
		Timestamp:  now.UTC(),
		Goroutines: runtime.NumGoroutine(),
	}
	if s.proc != nil {
		if mem, err := s.proc.MemoryInfoWithContext(r.Context()); err == nil {
			resp.RSSBytes = mem.RSS
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
