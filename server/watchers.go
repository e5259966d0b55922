// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/price"
	"github.com/bvk/cryptowatch/watcher"
)

var errWatcherNotFound = fmt.Errorf("watcher not found: %w", os.ErrNotExist)

func (s *Server) doListWatchers(ctx context.Context, _ *http.Request) ([]*watcher.Config, error) {
	return s.watchers.List(), nil
}

func (s *Server) doGetWatcher(ctx context.Context, r *http.Request) (*watcher.Config, error) {
	c, ok := s.watchers.Get(r.PathValue("id"))
	if !ok {
		return nil, errWatcherNotFound
	}
	return c, nil
}

func (s *Server) doCreateWatcher(ctx context.Context, r *http.Request) (*watcher.Config, error) {
	req, err := decodeRequest[api.CreateWatcherRequest](r)
	if err != nil {
		return nil, err
	}
	if err := req.Check(); err != nil {
		return nil, err
	}
	return s.watchers.Create(req.Input()), nil
}

func (s *Server) doUpdateWatcher(ctx context.Context, r *http.Request) (*watcher.Config, error) {
	req, err := decodeRequest[api.UpdateWatcherRequest](r)
	if err != nil {
		return nil, err
	}
	if err := req.Check(); err != nil {
		return nil, err
	}
	c, ok := s.watchers.Update(r.PathValue("id"), req.Input())
	if !ok {
		return nil, errWatcherNotFound
	}
	return c, nil
}

func (s *Server) doDeleteWatcher(ctx context.Context, r *http.Request) (*struct{}, error) {
	if !s.watchers.Remove(r.PathValue("id")) {
		return nil, errWatcherNotFound
	}
	return nil, nil
}

func (s *Server) doGetWatcherPrice(ctx context.Context, r *http.Request) (*price.SpotPrice, error) {
	c, ok := s.watchers.Get(r.PathValue("id"))
	if !ok {
		return nil, errWatcherNotFound
	}
	return s.prices.FetchSpotPrice(ctx, c.Symbol, r.URL.Query().Get("currency")), nil
}
