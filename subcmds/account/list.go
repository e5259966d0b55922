// Copyright (c) 2025 BVK Chaitanya

// Package account implements the exchange account monitoring commands.
package account

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type List struct {
	cmdutil.ClientFlags
}

func (c *List) Run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	resp, err := cmdutil.Get[[]*api.AccountItem](ctx, &c.ClientFlags, api.AccountsPath, nil)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tExchange\tAddress\n")
	for _, a := range *resp {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Exchange, a.Address)
	}
	return tw.Flush()
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "list", fset, cli.CmdFunc(c.Run)
}

func (c *List) Purpose() string {
	return "Lists the configured exchange accounts"
}
