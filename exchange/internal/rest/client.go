// Copyright (c) 2025 BVK Chaitanya

// Package rest implements the signed, throttled and retried JSON-over-HTTP
// plumbing shared by the exchange clients.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Signer adds authentication headers or parameters to a request. It is
// invoked again for every retry so that timestamps stay fresh.
type Signer func(req *http.Request, body []byte) error

// StatusError is returned for unsuccessful http status codes.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	name string

	client *http.Client

	limiter *rate.Limiter

	sign Signer

	maxRetries uint64

	// newBackOff is replaced by the tests.
	newBackOff func() backoff.BackOff
}

// New creates a REST client. Requests are throttled to limit requests per
// second unless rate limiting is disabled in the options.
func New(name string, opts *exchange.Options, limit rate.Limit, sign Signer) *Client {
	opts = opts.WithDefaults()
	c := &Client{
		name:       name,
		client:     opts.HTTPClient(),
		sign:       sign,
		maxRetries: opts.MaxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
	if !opts.DisableRateLimit {
		c.limiter = rate.NewLimiter(limit, 1)
	}
	return c
}

func (c *Client) GetJSON(ctx context.Context, addrURL *url.URL, response any) error {
	return c.DoJSON(ctx, http.MethodGet, addrURL, nil, response)
}

// DoJSON sends the request and decodes a successful response into response.
// Throttled (429, 418) and temporarily unavailable (502, 503, 504) responses
// are retried with exponential backoff. A 501 response is reported as
// exchange.ErrNotSupported.
func (c *Client) DoJSON(ctx context.Context, method string, addrURL *url.URL, request, response any) error {
	var body []byte
	if request != nil {
		data, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("could not marshal request body: %w", err)
		}
		body = data
	}

	attempt := func() error {
		return c.do(ctx, method, addrURL, body, response)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(attempt, b); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("http request failed", "exchange", c.name, "method", method, "url", addrURL.Redacted(), "err", err)
		}
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, addrURL *url.URL, body []byte, response any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, addrURL.String(), reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("could not create http request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Signatures carry timestamps, so the request is signed only after the
	// limiter lets it through.
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
	}
	if c.sign != nil {
		if err := c.sign(req, body); err != nil {
			return backoff.Permanent(fmt.Errorf("could not sign request: %w", err))
		}
	}

	at := time.Now()
	resp, err := c.client.Do(req)
	latency := time.Since(at)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("could not read response body: %w", err))
	}
	slog.Debug("exchange rest call", "exchange", c.name, "method", method, "path", addrURL.Path, "status", resp.StatusCode, "latency", latency)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusTeapot, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		slog.Warn("exchange request is throttled or unavailable (retrying)", "exchange", c.name, "status", resp.StatusCode)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	case http.StatusNotImplemented:
		return backoff.Permanent(fmt.Errorf("%w: %w", exchange.ErrNotSupported, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}))
	default:
		return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(data)})
	}

	if response == nil {
		return nil
	}
	if err := json.Unmarshal(data, response); err != nil {
		return backoff.Permanent(fmt.Errorf("could not decode response to json: %w", err))
	}
	return nil
}
