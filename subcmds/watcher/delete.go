// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Delete struct {
	cmdutil.ClientFlags
}

func (c *Delete) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one watcher-id argument")
	}
	return cmdutil.Delete(ctx, &c.ClientFlags, api.WatcherPath(args[0]))
}

func (c *Delete) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("delete", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "delete", fset, cli.CmdFunc(c.Run)
}

func (c *Delete) Purpose() string {
	return "Removes a price watcher"
}
