// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/cryptowatch/exchange"
)

// AccountItem is the public view of an exchange account. Credentials are
// never exposed.
type AccountItem struct {
	ID       string `json:"id"`
	Exchange string `json:"exchange"`
	Address  string `json:"address,omitempty"`
}

func AccountPath(id, op string) string {
	return AccountsPath + "/" + url.PathEscape(id) + "/" + op
}

// FetchQuery holds the query parameters of account list operations.
type FetchQuery struct {
	Symbol string

	// Since is in milliseconds since the unix epoch. Negative values mean
	// unset.
	Since int64

	// Limit is a positive count. Zero means unset.
	Limit int
}

// ParseFetchQuery parses symbol, since and limit query parameters.
func ParseFetchQuery(values url.Values) (*FetchQuery, error) {
	q := &FetchQuery{
		Symbol: strings.TrimSpace(values.Get("symbol")),
		Since:  -1,
	}
	if v := values.Get("since"); v != "" {
		since, err := strconv.ParseInt(v, 10, 64)
		if err != nil || since < 0 {
			return nil, fmt.Errorf("since must be a non-negative number of milliseconds: %w", os.ErrInvalid)
		}
		q.Since = since
	}
	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("limit must be a positive integer: %w", os.ErrInvalid)
		}
		q.Limit = limit
	}
	return q, nil
}

// Values returns the query parameters.
func (q *FetchQuery) Values() url.Values {
	values := make(url.Values)
	if q.Symbol != "" {
		values.Set("symbol", q.Symbol)
	}
	if q.Since >= 0 {
		values.Set("since", strconv.FormatInt(q.Since, 10))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// Options returns the exchange fetch options.
func (q *FetchQuery) Options() *exchange.FetchOptions {
	opts := &exchange.FetchOptions{
		Symbol: q.Symbol,
		Limit:  q.Limit,
	}
	if q.Since >= 0 {
		opts.Since = time.UnixMilli(q.Since).UTC()
	}
	return opts
}
