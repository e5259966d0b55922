// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"github.com/benbjohnson/clock"
	"github.com/bvk/cryptowatch/exchange"
)

type Options struct {
	// Exchanges holds the exchange client constructors. Defaults to all
	// exchanges implemented in this module.
	Exchanges *exchange.Registry

	// PriceEndpoint overrides the CoinMarketCap api base url.
	PriceEndpoint string

	Clock clock.Clock
}

func (v *Options) setDefaults() {
	if v.Exchanges == nil {
		v.Exchanges = DefaultExchanges()
	}
	if v.Clock == nil {
		v.Clock = clock.New()
	}
}

func (v *Options) Check() error {
	return nil
}
