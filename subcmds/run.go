// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bvk/cryptowatch/config"
	"github.com/bvk/cryptowatch/envfile"
	"github.com/bvk/cryptowatch/httputil"
	"github.com/bvk/cryptowatch/server"
	"github.com/bvk/cryptowatch/subcmds/cmdutil"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

const defaultEnvFile = ".env"

type Run struct {
	cmdutil.ServerFlags

	envFile  string
	lockFile string
	logDir   string

	noPprof      bool
	noRequestLog bool
}

func (c *Run) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.ServerFlags.SetFlags(fset)
	fset.StringVar(&c.envFile, "env-file", "", "path to a KEY=VALUE environment file (default .env when present)")
	fset.StringVar(&c.lockFile, "lock-file", "", "when non-empty, path to a lock file that prevents multiple instances")
	fset.StringVar(&c.logDir, "log-dir", "", "when non-empty, log messages are written to files in this directory")
	fset.BoolVar(&c.noPprof, "no-pprof", false, "when true net/http/pprof handler is not registered")
	fset.BoolVar(&c.noRequestLog, "no-request-log", false, "when true, http requests are not logged")
	return "run", fset, cli.CmdFunc(c.run)
}

func (c *Run) Purpose() string {
	return "Runs the cryptowatch api server in foreground"
}

func (c *Run) Description() string {
	return `

Command "run" starts the cryptowatch api service. Service is configured through
environment variables which can also be loaded from an environment file.

ENVIRONMENT

    PORT                      TCP port for the api (default 4000)
    LOG_LEVEL                 debug, info, warn or error (default info)
    COINMARKETCAP_API_KEY     api key for spot prices (optional)
    EXCHANGE_ACCOUNTS         JSON list of exchange accounts
    EXCHANGE_HTTP_PROXY       proxy url for exchange requests (optional)
    EXCHANGE_HTTP_TIMEOUT_MS  exchange request timeout (default 10000)

An example EXCHANGE_ACCOUNTS value is given below:

    [{"id":"main","exchange":"binance","apiKey":"111","secret":"222"}]

`
}

func (c *Run) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(c.envFile) == 0 {
		if err := envfile.Load(defaultEnvFile, envfile.IgnoreMissing()); err != nil {
			return err
		}
	} else if err := envfile.Load(c.envFile); err != nil {
		return err
	}

	cfg, err := config.FromEnv(nil /* lookup */)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}

	closeLog, err := c.setupLogging(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	if len(c.lockFile) != 0 {
		lockPath, err := filepath.Abs(c.lockFile)
		if err != nil {
			return fmt.Errorf("could not determine lock-file %q absolute path: %w", c.lockFile, err)
		}
		flock, err := lockfile.New(lockPath)
		if err != nil {
			return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
		}
		if err := flock.TryLock(); err != nil {
			return fmt.Errorf("could not get lock on file %q (is another instance running?): %w", lockPath, err)
		}
		defer flock.Unlock()
	}

	ip := net.ParseIP(c.IP)
	if ip == nil {
		return fmt.Errorf("invalid ip address %q: %w", c.IP, os.ErrInvalid)
	}
	if c.Port < 0 || cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port number %d: %w", cfg.Port, os.ErrInvalid)
	}
	addr := &net.TCPAddr{
		IP:   ip,
		Port: cfg.Port,
	}

	svc, err := server.New(cfg, nil /* opts */)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Warn("could not close exchange clients (ignored)", "err", err)
		}
	}()

	s, err := httputil.New(&httputil.Options{NoRequestLog: c.noRequestLog})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Warn("could not shutdown http server gracefully", "err", err)
		}
	}()

	for k, v := range svc.HandlerMap() {
		s.AddHandler(k, v)
	}
	if !c.noPprof {
		s.AddHandler("GET /debug/pprof/heap", pprof.Handler("heap"))
		s.AddHandler("GET /debug/pprof/goroutine", pprof.Handler("goroutine"))
		s.AddHandler("GET /debug/pprof/allocs", pprof.Handler("allocs"))
	}

	if _, err := s.StartTCP(ctx, addr); err != nil {
		return fmt.Errorf("could not start http server on %s: %w", addr, err)
	}
	slog.Info("started cryptowatch server", "addr", addr, "accounts", cfg.Accounts.Len())

	<-ctx.Done()
	slog.Info("cryptowatch server is shutting down", "cause", context.Cause(ctx))
	return nil
}

// setupLogging installs the default slog logger. Returns a function to flush
// and close the log backend.
func (c *Run) setupLogging(level slog.Level) (func(), error) {
	if len(c.logDir) == 0 {
		lvar := new(slog.LevelVar)
		lvar.Set(level)
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvar})))
		return func() {}, nil
	}

	if err := os.MkdirAll(c.logDir, 0700); err != nil {
		return nil, fmt.Errorf("could not create log directory %q: %w", c.logDir, err)
	}
	if fi, err := os.Stat(c.logDir); err != nil || !fi.IsDir() {
		return nil, errors.Join(fmt.Errorf("log-dir %q is not a directory: %w", c.logDir, os.ErrInvalid), err)
	}

	backend := sglog.NewBackend(&sglog.Options{
		LogDirs: []string{c.logDir},
	})
	if level <= slog.LevelDebug {
		backend.EnableDebugLog()
	}
	slog.SetDefault(slog.New(newLevelHandler(level, backend.Handler())))
	return backend.Close, nil
}
