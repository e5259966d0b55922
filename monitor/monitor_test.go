// Copyright (c) 2025 BVK Chaitanya

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bvk/cryptowatch/accounts"
	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/exchange/exchangetest"
)

func newTestDirectory(t *testing.T) *accounts.Directory {
	t.Helper()

	dir, err := accounts.New([]*accounts.Account{
		{ID: "main", Exchange: "fake", APIKey: "k", Secret: "s"},
		{ID: "other", Exchange: "unknown", APIKey: "k", Secret: "s"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestConcurrentGetCreatesOnce(t *testing.T) {
	dir := newTestDirectory(t)

	var count atomic.Int64
	registry := exchange.NewRegistry()
	registry.Register("fake", func(*exchange.Credentials, *exchange.Options) (exchange.Client, error) {
		count.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &exchangetest.Client{Name: "fake"}, nil
	})
	cache := NewClientCache(dir, registry, nil)

	const n = 32
	var wg sync.WaitGroup
	clients := make([]exchange.Client, n)
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			clients[i], errs[i] = cache.Get(context.Background(), "main")
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("%d: want nil error, got %v", i, errs[i])
		}
		if clients[i] != clients[0] {
			t.Fatalf("%d: want the same client instance for all callers", i)
		}
	}
	if v := count.Load(); v != 1 {
		t.Fatalf("want 1 construction, got %d", v)
	}

	again, err := cache.Get(context.Background(), "main")
	if err != nil || again != clients[0] {
		t.Fatalf("want cached client, got %v, %v", again, err)
	}
	if v := count.Load(); v != 1 {
		t.Fatalf("want 1 construction after cached get, got %d", v)
	}
}

func TestGetErrors(t *testing.T) {
	dir := newTestDirectory(t)
	registry, count := exchangetest.Registry("fake", &exchangetest.Client{Name: "fake"})
	cache := NewClientCache(dir, registry, nil)

	_, err := cache.Get(context.Background(), "missing")
	if !errors.Is(err, ErrAccountNotFound) || KindOf(err) != KindAccountNotFound {
		t.Fatalf("want account not found, got %v", err)
	}
	_, err = cache.Get(context.Background(), "other")
	if !errors.Is(err, ErrUnsupportedExchange) || KindOf(err) != KindUnsupportedExchange {
		t.Fatalf("want unsupported exchange, got %v", err)
	}
	if v := count.Load(); v != 0 {
		t.Fatalf("want no constructions, got %d", v)
	}
}

func TestConstructorFailureIsNotCached(t *testing.T) {
	dir := newTestDirectory(t)

	var count atomic.Int64
	registry := exchange.NewRegistry()
	registry.Register("fake", func(*exchange.Credentials, *exchange.Options) (exchange.Client, error) {
		if count.Add(1) == 1 {
			return nil, fmt.Errorf("bad credentials")
		}
		return &exchangetest.Client{Name: "fake"}, nil
	})
	cache := NewClientCache(dir, registry, nil)

	if _, err := cache.Get(context.Background(), "main"); err == nil || KindOf(err) != KindUpstream {
		t.Fatalf("want upstream error, got %v", err)
	}
	if _, err := cache.Get(context.Background(), "main"); err != nil {
		t.Fatalf("want second attempt to succeed, got %v", err)
	}
	if v := count.Load(); v != 2 {
		t.Fatalf("want 2 constructions, got %d", v)
	}
}

func TestMissingCapabilityNeverCallsClient(t *testing.T) {
	dir := newTestDirectory(t)
	client := &exchangetest.Client{
		Name:         "fake",
		Capabilities: exchange.Capabilities{exchange.FetchOpenOrders: true},
	}
	registry, _ := exchangetest.Registry("fake", client)
	svc := NewService(NewClientCache(dir, registry, nil))

	_, err := svc.FetchTransactions(context.Background(), "main", nil)
	if !errors.Is(err, ErrOperationNotSupported) {
		t.Fatalf("want operation not supported, got %v", err)
	}
	var merr *Error
	if !errors.As(err, &merr) || merr.Operation != "fetchTransactions" || merr.ExchangeID != "fake" || merr.AccountID != "main" {
		t.Fatalf("unexpected error details %#v", merr)
	}
	if _, err := svc.FetchPositions(context.Background(), "main", ""); !errors.Is(err, ErrOperationNotSupported) {
		t.Fatalf("want operation not supported, got %v", err)
	}
	if v := client.Calls(); v != 0 {
		t.Fatalf("want no client calls, got %d", v)
	}
}

func TestUnknownAccountFailsBeforeConstruction(t *testing.T) {
	dir := newTestDirectory(t)
	registry, count := exchangetest.Registry("fake", &exchangetest.Client{Name: "fake"})
	svc := NewService(NewClientCache(dir, registry, nil))

	if _, err := svc.FetchOpenOrders(context.Background(), "nobody", nil); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want account not found, got %v", err)
	}
	if v := count.Load(); v != 0 {
		t.Fatalf("want no constructions, got %d", v)
	}
}

func TestPassThroughAndClassification(t *testing.T) {
	dir := newTestDirectory(t)
	client := &exchangetest.Client{
		Name: "fake",
		Capabilities: exchange.Capabilities{
			exchange.FetchTransactions: true,
			exchange.FetchPositions:    true,
			exchange.FetchOpenOrders:   true,
		},
		Orders:    []*exchange.Order{{ID: "1"}, {ID: "2"}},
		Positions: []*exchange.Position{{Symbol: "BTCUSDT"}},
	}
	registry, _ := exchangetest.Registry("fake", client)
	svc := NewService(NewClientCache(dir, registry, nil))
	ctx := context.Background()

	opts := &exchange.FetchOptions{Symbol: "BTC/USDT", Since: time.UnixMilli(1000), Limit: 5}
	orders, err := svc.FetchOpenOrders(ctx, "main", opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || orders[0] != client.Orders[0] {
		t.Fatalf("want orders returned unmodified")
	}
	if client.LastOptions != opts {
		t.Fatalf("want fetch options passed through")
	}

	if _, err := svc.FetchPositions(ctx, "main", "BTC/USDT"); err != nil {
		t.Fatal(err)
	}
	if len(client.LastSymbols) != 1 || client.LastSymbols[0] != "BTC/USDT" {
		t.Fatalf("want single symbol list, got %v", client.LastSymbols)
	}
	if _, err := svc.FetchPositions(ctx, "main", ""); err != nil {
		t.Fatal(err)
	}
	if client.LastSymbols != nil {
		t.Fatalf("want nil symbols for all positions, got %v", client.LastSymbols)
	}

	client.Err = fmt.Errorf("unimplemented filter: %w", exchange.ErrNotSupported)
	if _, err := svc.FetchTransactions(ctx, "main", nil); !errors.Is(err, ErrOperationNotSupported) {
		t.Fatalf("want library not-supported reclassified, got %v", err)
	}

	cause := errors.New("connection reset")
	client.Err = cause
	_, err = svc.FetchTransactions(ctx, "main", nil)
	if KindOf(err) != KindUpstream || !errors.Is(err, cause) {
		t.Fatalf("want upstream error wrapping the cause, got %v", err)
	}
	if errors.Is(err, ErrOperationNotSupported) || errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("upstream error must not match other kinds")
	}
}

func TestCloseClosesClients(t *testing.T) {
	dir := newTestDirectory(t)
	client := &exchangetest.Client{Name: "fake"}
	registry, _ := exchangetest.Registry("fake", client)
	cache := NewClientCache(dir, registry, nil)

	if _, err := cache.Get(context.Background(), "main"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		t.Fatal(err)
	}
	if !client.Closed() {
		t.Fatalf("want cached client to be closed")
	}
}
