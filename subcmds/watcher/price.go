// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"context"
	"flag"
	"fmt"
	"net/url"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/price"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Price struct {
	cmdutil.ClientFlags

	currency string
}

func (c *Price) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one watcher-id argument")
	}
	query := make(url.Values)
	if len(c.currency) != 0 {
		query.Set("currency", c.currency)
	}
	resp, err := cmdutil.Get[price.SpotPrice](ctx, &c.ClientFlags, api.WatcherPricePath(args[0]), query)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s %s %s (source %s at %s)\n", resp.Symbol, resp.Price, resp.Currency, resp.Source, resp.AsOf.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}

func (c *Price) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("price", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.currency, "currency", "", "quote currency (default USD)")
	return "price", fset, cli.CmdFunc(c.Run)
}

func (c *Price) Purpose() string {
	return "Prints the current spot price for a watcher's symbol"
}
