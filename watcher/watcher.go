// Copyright (c) 2025 BVK Chaitanya

// Package watcher implements an in-memory registry of price-alert rules.
package watcher

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Registry is a concurrency-safe collection of watcher configs. Callers
// always receive copies, so stored configs can only change through the
// registry.
type Registry struct {
	clock clock.Clock

	mu sync.RWMutex

	// ids holds watcher ids in insertion order.
	ids []string

	configMap map[string]*Config

	// lastStamp is the latest timestamp handed out. Timestamps never go
	// backwards even if the wall clock does.
	lastStamp time.Time
}

// New creates a registry seeded with the default watchers. A nil clock uses
// the system clock.
func New(clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	r := &Registry{
		clock:     clk,
		configMap: make(map[string]*Config),
	}
	r.seed()
	return r
}

func (r *Registry) seed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.stampLocked()
	defaults := []*Config{
		{
			Symbol:    "BTC",
			Exchange:  "binance",
			Threshold: decimal.NewFromInt(65000),
			Direction: Above,
			Frequency: Realtime,
		},
		{
			Symbol:    "ETH",
			Exchange:  "coinbase",
			Threshold: decimal.NewFromInt(3200),
			Direction: Below,
			Frequency: OneMinute,
		},
	}
	for _, c := range defaults {
		c.ID = uuid.New().String()
		c.Active = true
		c.CreatedAt = now
		c.UpdatedAt = now
		r.ids = append(r.ids, c.ID)
		r.configMap[c.ID] = c
	}
}

func (r *Registry) stampLocked() time.Time {
	now := r.clock.Now().UTC()
	if now.Before(r.lastStamp) {
		now = r.lastStamp
	}
	r.lastStamp = now
	return now
}

// List returns copies of all watchers in insertion order.
func (r *Registry) List() []*Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]*Config, 0, len(r.ids))
	for _, id := range r.ids {
		configs = append(configs, r.configMap[id].clone())
	}
	return configs
}

func (r *Registry) Get(id string) (*Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configMap[id]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

// Create adds a new active watcher. Symbol is uppercased and exchange name
// is lowercased. Input is expected to be validated with its Check method.
func (r *Registry) Create(input *CreateInput) *Config {
	frequency := input.Frequency
	if frequency == "" {
		frequency = Realtime
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.stampLocked()
	c := &Config{
		ID:        uuid.New().String(),
		Symbol:    strings.ToUpper(input.Symbol),
		Exchange:  strings.ToLower(input.Exchange),
		Threshold: input.Threshold,
		Direction: input.Direction,
		Frequency: frequency,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.ids = append(r.ids, c.ID)
	r.configMap[c.ID] = c

	slog.Info("created new watcher", "id", c.ID, "symbol", c.Symbol, "exchange", c.Exchange, "threshold", c.Threshold, "direction", c.Direction, "frequency", c.Frequency)
	return c.clone()
}

// Update merges the non-nil input fields into an existing watcher and
// refreshes its update timestamp. Returns false if the watcher doesn't exist.
func (r *Registry) Update(id string, input *UpdateInput) (*Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.configMap[id]
	if !ok {
		return nil, false
	}
	if input.Threshold != nil {
		c.Threshold = *input.Threshold
	}
	if input.Direction != nil {
		c.Direction = *input.Direction
	}
	if input.Frequency != nil {
		c.Frequency = *input.Frequency
	}
	if input.Active != nil {
		c.Active = *input.Active
	}
	c.UpdatedAt = r.stampLocked()

	slog.Info("updated watcher", "id", c.ID, "threshold", c.Threshold, "direction", c.Direction, "frequency", c.Frequency, "active", c.Active)
	return c.clone(), true
}

// Remove deletes a watcher. Returns false if the watcher doesn't exist.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configMap[id]; !ok {
		return false
	}
	delete(r.configMap, id)
	if i := slices.Index(r.ids, id); i >= 0 {
		r.ids = slices.Delete(r.ids, i, i+1)
	}

	slog.Info("removed watcher", "id", id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids)
}
