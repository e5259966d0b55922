// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/bvk/cryptowatch/watcher"
	"github.com/visvasity/cli"
)

type List struct {
	cmdutil.ClientFlags

	printJSON bool
}

func (c *List) Run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	resp, err := cmdutil.Get[[]*watcher.Config](ctx, &c.ClientFlags, api.WatchersPath, nil)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	if c.printJSON {
		return cmdutil.PrintJSON(stdout, *resp)
	}

	tw := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tSymbol\tExchange\tDirection\tThreshold\tFrequency\tActive\n")
	for _, w := range *resp {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n", w.ID, w.Symbol, w.Exchange, w.Direction, w.Threshold.StringFixed(2), w.Frequency, w.Active)
	}
	return tw.Flush()
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.printJSON, "json", false, "when true, prints the watchers in json format")
	return "list", fset, cli.CmdFunc(c.Run)
}

func (c *List) Purpose() string {
	return "Lists all price watchers"
}
