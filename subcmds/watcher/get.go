// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/bvk/cryptowatch/watcher"
	"github.com/visvasity/cli"
)

type Get struct {
	cmdutil.ClientFlags
}

func (c *Get) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one watcher-id argument")
	}
	resp, err := cmdutil.Get[watcher.Config](ctx, &c.ClientFlags, api.WatcherPath(args[0]), nil)
	if err != nil {
		return err
	}
	return cmdutil.PrintJSON(cli.Stdout(ctx), resp)
}

func (c *Get) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "get", fset, cli.CmdFunc(c.Run)
}

func (c *Get) Purpose() string {
	return "Prints a price watcher in JSON format"
}
