// Copyright (c) 2025 BVK Chaitanya

// Package config builds the typed service configuration from environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/cryptowatch/accounts"
	"github.com/bvk/cryptowatch/exchange"
)

const (
	DefaultPort = 4000

	DefaultExchangeHTTPTimeout = 10 * time.Second
)

// Config holds the service configuration.
type Config struct {
	Port int

	LogLevel slog.Level

	// CoinMarketCapAPIKey is optional. When empty, spot prices always come
	// from the fallback table.
	CoinMarketCapAPIKey string

	Accounts *accounts.Directory

	ExchangeHTTPProxy *url.URL

	ExchangeHTTPTimeout time.Duration

	// AlertWebhookURL is validated but not used.
	AlertWebhookURL *url.URL
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv builds the configuration from environment variables. A nil lookup
// function uses os.LookupEnv.
func FromEnv(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	c := &Config{
		Port:                DefaultPort,
		LogLevel:            slog.LevelInfo,
		CoinMarketCapAPIKey: get("COINMARKETCAP_API_KEY"),
		ExchangeHTTPTimeout: DefaultExchangeHTTPTimeout,
	}

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("PORT must be a number between 1 and 65535: %w", os.ErrInvalid)
		}
		c.Port = port
	}

	if v := get("LOG_LEVEL"); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return nil, err
		}
		c.LogLevel = level
	}

	dir, err := accounts.Parse([]byte(get("EXCHANGE_ACCOUNTS")))
	if err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_ACCOUNTS: %w", err)
	}
	c.Accounts = dir

	if v := get("EXCHANGE_HTTP_PROXY"); v != "" {
		u, err := parseURL(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXCHANGE_HTTP_PROXY: %w", err)
		}
		c.ExchangeHTTPProxy = u
	}

	if v := get("EXCHANGE_HTTP_TIMEOUT_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("EXCHANGE_HTTP_TIMEOUT_MS must be a positive integer: %w", os.ErrInvalid)
		}
		c.ExchangeHTTPTimeout = time.Duration(ms) * time.Millisecond
	}

	if v := get("ALERT_WEBHOOK_URL"); v != "" {
		u, err := parseURL(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_WEBHOOK_URL: %w", err)
		}
		c.AlertWebhookURL = u
	}
	return c, nil
}

// ExchangeOptions returns the options for exchange clients.
func (c *Config) ExchangeOptions() *exchange.Options {
	return &exchange.Options{
		HttpClientTimeout: c.ExchangeHTTPTimeout,
		ProxyURL:          c.ExchangeHTTPProxy,
	}
}

// ParseLevel parses a log level name. Names trace and fatal used by other
// loggers are mapped to debug and error respectively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "fatal":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log level %q must be one of debug, info, warn or error: %w", s, os.ErrInvalid)
}

func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute: %w", s, os.ErrInvalid)
	}
	return u, nil
}
