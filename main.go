// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/cryptowatch/subcmds"
	"github.com/bvk/cryptowatch/subcmds/account"
	"github.com/bvk/cryptowatch/subcmds/watcher"
	"github.com/visvasity/cli"
)

func main() {
	watcherCmds := []cli.Command{
		new(watcher.List),
		new(watcher.Get),
		new(watcher.Add),
		new(watcher.Update),
		new(watcher.Delete),
		new(watcher.Price),
	}

	accountCmds := []cli.Command{
		new(account.List),
		new(account.Transactions),
		new(account.Positions),
		new(account.OpenOrders),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		cli.CommandGroup("watcher", "Manage price watchers", watcherCmds...),
		cli.CommandGroup("account", "View exchange account activity", accountCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
