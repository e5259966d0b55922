// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

type Options struct {
	// HttpClientTimeout is the timeout for every REST request.
	HttpClientTimeout time.Duration

	// ProxyURL, when non-nil, routes all REST requests through the proxy.
	ProxyURL *url.URL

	// DisableRateLimit turns off the client side request throttling. Rate
	// limiting is enabled by default.
	DisableRateLimit bool

	// MaxRetries is the maximum number of retries for throttled or
	// temporarily unavailable responses.
	MaxRetries uint64
}

func (v *Options) setDefaults() {
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
	if v.MaxRetries == 0 {
		v.MaxRetries = 3
	}
}

func (v *Options) Check() error {
	if v.HttpClientTimeout < 0 {
		return fmt.Errorf("http client timeout cannot be negative: %w", os.ErrInvalid)
	}
	if v.ProxyURL != nil && v.ProxyURL.Host == "" {
		return fmt.Errorf("proxy url %q has no host: %w", v.ProxyURL, os.ErrInvalid)
	}
	return nil
}

// WithDefaults returns a copy of the options with default values filled in.
func (v *Options) WithDefaults() *Options {
	opts := new(Options)
	if v != nil {
		*opts = *v
	}
	opts.setDefaults()
	return opts
}

// HTTPClient returns a http client configured with the timeout and proxy
// settings.
func (v *Options) HTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if v.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(v.ProxyURL)
	}
	return &http.Client{
		Timeout:   v.HttpClientTimeout,
		Transport: transport,
	}
}
