// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"net/url"

	"github.com/bvk/cryptowatch/watcher"
	"github.com/shopspring/decimal"
)

func WatcherPath(id string) string {
	return WatchersPath + "/" + url.PathEscape(id)
}

func WatcherPricePath(id string) string {
	return WatcherPath(id) + "/price"
}

type CreateWatcherRequest struct {
	Symbol    string            `json:"symbol"`
	Exchange  string            `json:"exchange"`
	Threshold decimal.Decimal   `json:"threshold"`
	Direction watcher.Direction `json:"direction"`
	Frequency watcher.Frequency `json:"frequency,omitempty"`
}

func (r *CreateWatcherRequest) Input() *watcher.CreateInput {
	return &watcher.CreateInput{
		Symbol:    r.Symbol,
		Exchange:  r.Exchange,
		Threshold: r.Threshold,
		Direction: r.Direction,
		Frequency: r.Frequency,
	}
}

func (r *CreateWatcherRequest) Check() error {
	return r.Input().Check()
}

// UpdateWatcherRequest holds the fields to update. At least one field must
// be set.
type UpdateWatcherRequest struct {
	Threshold *decimal.Decimal   `json:"threshold,omitempty"`
	Direction *watcher.Direction `json:"direction,omitempty"`
	Frequency *watcher.Frequency `json:"frequency,omitempty"`
	Active    *bool              `json:"active,omitempty"`
}

func (r *UpdateWatcherRequest) Input() *watcher.UpdateInput {
	return &watcher.UpdateInput{
		Threshold: r.Threshold,
		Direction: r.Direction,
		Frequency: r.Frequency,
		Active:    r.Active,
	}
}

func (r *UpdateWatcherRequest) Check() error {
	return r.Input().Check()
}
