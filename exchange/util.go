// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"slices"
	"strings"
	"time"
)

// SplitSymbol splits a unified market symbol (ex: BTC/USDT or BTC-USDT) into
// base and quote currencies. Quote is empty when symbol has no separator.
func SplitSymbol(symbol string) (base, quote string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.IndexAny(symbol, "/-"); i != -1 {
		return symbol[:i], symbol[i+1:]
	}
	return symbol, ""
}

// JoinSymbol returns the unified market symbol for base and quote.
func JoinSymbol(base, quote string) string {
	if quote == "" {
		return strings.ToUpper(base)
	}
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote)
}

// FromMillis converts a unix timestamp in milliseconds to time.Time. Zero
// stays as zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// SortTransactions orders transactions by timestamp (oldest first) and
// applies the since and limit filters.
func SortTransactions(txs []*Transaction, opts *FetchOptions) []*Transaction {
	slices.SortStableFunc(txs, func(a, b *Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if opts == nil {
		return txs
	}
	if !opts.Since.IsZero() {
		txs = slices.DeleteFunc(txs, func(v *Transaction) bool {
			return v.Timestamp.Before(opts.Since)
		})
	}
	// With a since filter the oldest records are kept, otherwise the latest.
	if opts.Limit > 0 && len(txs) > opts.Limit {
		if opts.Since.IsZero() {
			return txs[len(txs)-opts.Limit:]
		}
		txs = txs[:opts.Limit]
	}
	return txs
}
