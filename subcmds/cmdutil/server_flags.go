// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"flag"
)

type ServerFlags struct {
	// Port overrides the PORT environment variable when non-zero.
	Port int
	IP   string
}

func (sf *ServerFlags) SetFlags(fset *flag.FlagSet) {
	fset.IntVar(&sf.Port, "listen-port", 0, "TCP port number for the api endpoint (default=4000 or PORT value)")
	fset.StringVar(&sf.IP, "listen-ip", "0.0.0.0", "TCP ip address for the api endpoint")
}
