// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/bvk/cryptowatch/watcher"
	"github.com/shopspring/decimal"
	"github.com/visvasity/cli"
)

type Update struct {
	cmdutil.ClientFlags

	threshold string
	direction string
	frequency string
	active    string
}

func (c *Update) request() (*api.UpdateWatcherRequest, error) {
	req := new(api.UpdateWatcherRequest)
	if len(c.threshold) != 0 {
		v, err := decimal.NewFromString(c.threshold)
		if err != nil {
			return nil, fmt.Errorf("could not parse threshold %q: %w", c.threshold, err)
		}
		req.Threshold = &v
	}
	if len(c.direction) != 0 {
		v := watcher.Direction(c.direction)
		req.Direction = &v
	}
	if len(c.frequency) != 0 {
		v := watcher.Frequency(c.frequency)
		req.Frequency = &v
	}
	if len(c.active) != 0 {
		v, err := strconv.ParseBool(c.active)
		if err != nil {
			return nil, fmt.Errorf("could not parse active flag %q: %w", c.active, err)
		}
		req.Active = &v
	}
	if err := req.Check(); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Update) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one watcher-id argument")
	}
	req, err := c.request()
	if err != nil {
		return err
	}
	resp, err := cmdutil.Patch[watcher.Config](ctx, &c.ClientFlags, api.WatcherPath(args[0]), req)
	if err != nil {
		return err
	}
	return cmdutil.PrintJSON(cli.Stdout(ctx), resp)
}

func (c *Update) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("update", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.threshold, "threshold", "", "new threshold price")
	fset.StringVar(&c.direction, "direction", "", "new trigger direction (above or below)")
	fset.StringVar(&c.frequency, "frequency", "", "new check frequency (realtime, 1m, 5m or 15m)")
	fset.StringVar(&c.active, "active", "", "enables or disables the watcher (true or false)")
	return "update", fset, cli.CmdFunc(c.Run)
}

func (c *Update) Purpose() string {
	return "Updates one or more fields of a price watcher"
}
