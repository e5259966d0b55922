// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/bvk/cryptowatch/watcher"
	"github.com/shopspring/decimal"
	"github.com/visvasity/cli"
)

type Add struct {
	cmdutil.ClientFlags

	symbol    string
	exchange  string
	threshold string
	direction string
	frequency string
}

func (c *Add) request() (*api.CreateWatcherRequest, error) {
	threshold, err := decimal.NewFromString(c.threshold)
	if err != nil {
		return nil, fmt.Errorf("could not parse threshold %q: %w", c.threshold, err)
	}
	req := &api.CreateWatcherRequest{
		Symbol:    c.symbol,
		Exchange:  c.exchange,
		Threshold: threshold,
		Direction: watcher.Direction(c.direction),
		Frequency: watcher.Frequency(c.frequency),
	}
	if err := req.Check(); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Add) Run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req, err := c.request()
	if err != nil {
		return err
	}
	resp, err := cmdutil.Post[watcher.Config](ctx, &c.ClientFlags, api.WatchersPath, req)
	if err != nil {
		return err
	}
	return cmdutil.PrintJSON(cli.Stdout(ctx), resp)
}

func (c *Add) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.symbol, "symbol", "", "asset symbol to watch (ex: BTC)")
	fset.StringVar(&c.exchange, "exchange", "binance", "exchange name for the symbol")
	fset.StringVar(&c.threshold, "threshold", "", "threshold price")
	fset.StringVar(&c.direction, "direction", "", "trigger direction (above or below)")
	fset.StringVar(&c.frequency, "frequency", "", "check frequency (realtime, 1m, 5m or 15m)")
	return "add", fset, cli.CmdFunc(c.Run)
}

func (c *Add) Purpose() string {
	return "Creates a new price watcher"
}

func (c *Add) Description() string {
	return `

Command "add" creates a price watcher that is triggered when the symbol's price
crosses the threshold in the given direction. Symbols and exchange names are
normalized by the server. Frequency defaults to realtime.

`
}
