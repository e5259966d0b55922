// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of the threshold that triggers a watcher.
type Direction string

const (
	Above Direction = "above"
	Below Direction = "below"
)

func (d Direction) Check() error {
	switch d {
	case Above, Below:
		return nil
	}
	return fmt.Errorf("direction %q must be one of above or below: %w", d, os.ErrInvalid)
}

// Frequency is how often a watcher is evaluated.
type Frequency string

const (
	Realtime       Frequency = "realtime"
	OneMinute      Frequency = "1m"
	FiveMinutes    Frequency = "5m"
	FifteenMinutes Frequency = "15m"
)

func (f Frequency) Check() error {
	switch f {
	case Realtime, OneMinute, FiveMinutes, FifteenMinutes:
		return nil
	}
	return fmt.Errorf("frequency %q must be one of realtime, 1m, 5m or 15m: %w", f, os.ErrInvalid)
}

// Config is a price-alert rule.
type Config struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Exchange  string          `json:"exchange"`
	Threshold decimal.Decimal `json:"threshold"`
	Direction Direction       `json:"direction"`
	Frequency Frequency       `json:"frequency"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c *Config) clone() *Config {
	v := *c
	return &v
}

type CreateInput struct {
	Symbol    string
	Exchange  string
	Threshold decimal.Decimal
	Direction Direction

	// Frequency is optional and defaults to Realtime.
	Frequency Frequency
}

func (v *CreateInput) Check() error {
	if len(strings.TrimSpace(v.Symbol)) == 0 {
		return fmt.Errorf("symbol cannot be empty: %w", os.ErrInvalid)
	}
	if len(strings.TrimSpace(v.Exchange)) == 0 {
		return fmt.Errorf("exchange cannot be empty: %w", os.ErrInvalid)
	}
	if !v.Threshold.IsPositive() {
		return fmt.Errorf("threshold must be a positive number: %w", os.ErrInvalid)
	}
	if err := v.Direction.Check(); err != nil {
		return err
	}
	if v.Frequency != "" {
		if err := v.Frequency.Check(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateInput holds the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	Threshold *decimal.Decimal
	Direction *Direction
	Frequency *Frequency
	Active    *bool
}

// IsEmpty returns true if no field is set.
func (v *UpdateInput) IsEmpty() bool {
	return v.Threshold == nil && v.Direction == nil && v.Frequency == nil && v.Active == nil
}

func (v *UpdateInput) Check() error {
	if v.IsEmpty() {
		return fmt.Errorf("at least one field must be updated: %w", os.ErrInvalid)
	}
	if v.Threshold != nil && !v.Threshold.IsPositive() {
		return fmt.Errorf("threshold must be a positive number: %w", os.ErrInvalid)
	}
	if v.Direction != nil {
		if err := v.Direction.Check(); err != nil {
			return err
		}
	}
	if v.Frequency != nil {
		if err := v.Frequency.Check(); err != nil {
			return err
		}
	}
	return nil
}
