// Copyright (c) 2025 BVK Chaitanya

package account

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

// fetchFlags holds the common filters for the account list operations.
type fetchFlags struct {
	cmdutil.ClientFlags

	symbol string
	since  int64
	limit  int
}

func (f *fetchFlags) SetFlags(fset *flag.FlagSet, withPaging bool) {
	f.ClientFlags.SetFlags(fset)
	fset.StringVar(&f.symbol, "symbol", "", "currency code or market symbol filter")
	if withPaging {
		fset.Int64Var(&f.since, "since", -1, "only records at or after this time in unix milliseconds")
		fset.IntVar(&f.limit, "limit", 0, "maximum number of records")
	} else {
		f.since = -1
	}
}

func (f *fetchFlags) query() *api.FetchQuery {
	return &api.FetchQuery{
		Symbol: f.symbol,
		Since:  f.since,
		Limit:  f.limit,
	}
}

func fetch[T any](ctx context.Context, f *fetchFlags, op string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one account-id argument")
	}
	q := f.query()
	if q.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	resp, err := cmdutil.Get[[]*T](ctx, &f.ClientFlags, api.AccountPath(args[0], op), q.Values())
	if err != nil {
		return err
	}
	return cmdutil.PrintJSON(cli.Stdout(ctx), *resp)
}

type Transactions struct {
	fetchFlags
}

func (c *Transactions) Run(ctx context.Context, args []string) error {
	return fetch[exchange.Transaction](ctx, &c.fetchFlags, "transactions", args)
}

func (c *Transactions) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("transactions", flag.ContinueOnError)
	c.fetchFlags.SetFlags(fset, true)
	return "transactions", fset, cli.CmdFunc(c.Run)
}

func (c *Transactions) Purpose() string {
	return "Prints deposits and withdrawals of an account"
}

type Positions struct {
	fetchFlags
}

func (c *Positions) Run(ctx context.Context, args []string) error {
	return fetch[exchange.Position](ctx, &c.fetchFlags, "positions", args)
}

func (c *Positions) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("positions", flag.ContinueOnError)
	c.fetchFlags.SetFlags(fset, false)
	return "positions", fset, cli.CmdFunc(c.Run)
}

func (c *Positions) Purpose() string {
	return "Prints open derivatives positions of an account"
}

type OpenOrders struct {
	fetchFlags
}

func (c *OpenOrders) Run(ctx context.Context, args []string) error {
	return fetch[exchange.Order](ctx, &c.fetchFlags, "open-orders", args)
}

func (c *OpenOrders) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("open-orders", flag.ContinueOnError)
	c.fetchFlags.SetFlags(fset, true)
	return "open-orders", fset, cli.CmdFunc(c.Run)
}

func (c *OpenOrders) Purpose() string {
	return "Prints open orders of an account"
}
