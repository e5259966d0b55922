// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/bvk/cryptowatch/accounts"
	"github.com/bvk/cryptowatch/api"
	"github.com/bvk/cryptowatch/config"
	"github.com/bvk/cryptowatch/exchange"
	"github.com/bvk/cryptowatch/exchange/exchangetest"
	"github.com/bvk/cryptowatch/monitor"
	"github.com/bvk/cryptowatch/price"
	"github.com/bvk/cryptowatch/watcher"
	"github.com/shopspring/decimal"
)

type testServer struct {
	*httptest.Server

	client *exchangetest.Client
}

func newTestServer(t *testing.T, client *exchangetest.Client) *testServer {
	t.Helper()

	dir, err := accounts.New([]*accounts.Account{
		{ID: "main", Exchange: "fake", APIKey: "k", Secret: "s", Address: "addr1"},
		{ID: "legacy", Exchange: "unknown", APIKey: "k", Secret: "s"},
	})
	if err != nil {
		t.Fatal(err)
	}
	registry, _ := exchangetest.Registry("fake", client)

	s, err := New(&config.Config{Accounts: dir}, &Options{Exchanges: registry, Clock: clock.NewMock()})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		if err := s.Close(); err != nil {
			t.Error(err)
		}
	})
	return &testServer{Server: ts, client: client}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decodeData[T any](t *testing.T, data []byte) T {
	t.Helper()

	var resp api.Response[T]
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("could not decode response %q: %v", data, err)
	}
	return resp.Data
}

func decodeError(t *testing.T, data []byte) string {
	t.Helper()

	var resp api.ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("could not decode error response %q: %v", data, err)
	}
	return resp.Error
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&monitor.Error{Kind: monitor.KindAccountNotFound}, http.StatusNotFound},
		{&monitor.Error{Kind: monitor.KindUnsupportedExchange}, http.StatusBadRequest},
		{&monitor.Error{Kind: monitor.KindOperationNotSupported}, http.StatusNotImplemented},
		{&monitor.Error{Kind: monitor.KindUpstream, Err: errors.New("boom")}, http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", &monitor.Error{Kind: monitor.KindAccountNotFound}), http.StatusNotFound},
		{fmt.Errorf("bad limit: %w", os.ErrInvalid), http.StatusBadRequest},
		{errWatcherNotFound, http.StatusNotFound},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for i, test := range tests {
		if got := statusCode(test.err); got != test.want {
			t.Fatalf("%d: want %d, got %d", i, test.want, got)
		}
	}
}

func TestErrorMessageHidesUpstreamCause(t *testing.T) {
	cause := errors.New(`Get "https://api.binance.com/api/v3/openOrders?timestamp=1&signature=abcd": dial tcp: i/o timeout`)
	err := &monitor.Error{Kind: monitor.KindUpstream, AccountID: "main", ExchangeID: "binance", Operation: "fetchOpenOrders", Err: cause}

	msg := errorMessage(fmt.Errorf("wrapped: %w", err))
	if strings.Contains(msg, "signature") || strings.Contains(msg, "api.binance.com") {
		t.Fatalf("upstream message must not expose request details: %q", msg)
	}
	if msg != "exchange binance is unavailable" {
		t.Fatalf("want fixed message, got %q", msg)
	}

	notFound := &monitor.Error{Kind: monitor.KindAccountNotFound, AccountID: "nope"}
	if msg := errorMessage(notFound); msg != notFound.Error() {
		t.Fatalf("want %q, got %q", notFound.Error(), msg)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &exchangetest.Client{Name: "fake"})

	status, data := ts.do(t, "GET", api.HealthPath, "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d", http.StatusOK, status)
	}
	var resp api.HealthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Fatalf("want ok, got %q", resp.Status)
	}
	if resp.Goroutines <= 0 {
		t.Fatalf("want positive goroutines, got %d", resp.Goroutines)
	}
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, &exchangetest.Client{Name: "fake"})

	// Generate at least one monitor request metric.
	ts.do(t, "GET", api.AccountPath("missing", "positions"), "")

	status, data := ts.do(t, "GET", api.MetricsPath, "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d", http.StatusOK, status)
	}
	if !strings.Contains(string(data), "cryptowatch_monitor_requests_total") {
		t.Fatalf("want monitor request counter in metrics output")
	}
}

func TestUnknownPath(t *testing.T) {
	ts := newTestServer(t, &exchangetest.Client{Name: "fake"})

	for _, path := range []string{"/", "/nope", "/accounts/main/balances"} {
		status, data := ts.do(t, "GET", path, "")
		if status != http.StatusNotFound {
			t.Fatalf("%s: want %d, got %d", path, http.StatusNotFound, status)
		}
		if msg := decodeError(t, data); msg != "resource not found" {
			t.Fatalf("%s: want resource not found, got %q", path, msg)
		}
	}
}

func TestListAccounts(t *testing.T) {
	ts := newTestServer(t, &exchangetest.Client{Name: "fake"})

	status, data := ts.do(t, "GET", api.AccountsPath, "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d", http.StatusOK, status)
	}
	if strings.Contains(string(data), `"s"`) || strings.Contains(string(data), "apiKey") {
		t.Fatalf("account listing must not expose credentials: %s", data)
	}
	items := decodeData[[]*api.AccountItem](t, data)
	if len(items) != 2 {
		t.Fatalf("want 2 accounts, got %d", len(items))
	}
	if items[0].ID != "main" || items[0].Exchange != "fake" || items[0].Address != "addr1" {
		t.Fatalf("unexpected first account %+v", items[0])
	}
}

func TestAccountOperations(t *testing.T) {
	client := &exchangetest.Client{
		Name: "fake",
		Capabilities: exchange.Capabilities{
			exchange.FetchTransactions: true,
			exchange.FetchOpenOrders:   true,
		},
		Transactions: []*exchange.Transaction{
			{ID: "t1", Type: "deposit", Currency: "BTC", Amount: decimal.RequireFromString("0.5"), Status: "ok"},
		},
	}
	ts := newTestServer(t, client)

	status, data := ts.do(t, "GET", api.AccountPath("main", "transactions")+"?symbol=BTC&since=1700000000000&limit=5", "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d (%s)", http.StatusOK, status, data)
	}
	txs := decodeData[[]*exchange.Transaction](t, data)
	if len(txs) != 1 || txs[0].ID != "t1" {
		t.Fatalf("unexpected transactions %s", data)
	}

	// No orders is an empty array, not null.
	status, data = ts.do(t, "GET", api.AccountPath("main", "open-orders"), "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d", http.StatusOK, status)
	}
	if !strings.Contains(string(data), `"data":[]`) {
		t.Fatalf("want empty data array, got %s", data)
	}

	tests := []struct {
		path string
		want int
	}{
		{api.AccountPath("main", "positions"), http.StatusNotImplemented},
		{api.AccountPath("missing", "transactions"), http.StatusNotFound},
		{api.AccountPath("legacy", "transactions"), http.StatusBadRequest},
		{api.AccountPath("main", "transactions") + "?limit=abc", http.StatusBadRequest},
		{api.AccountPath("main", "transactions") + "?since=-5", http.StatusBadRequest},
	}
	for _, test := range tests {
		status, data := ts.do(t, "GET", test.path, "")
		if status != test.want {
			t.Fatalf("%s: want %d, got %d (%s)", test.path, test.want, status, data)
		}
		if decodeError(t, data) == "" {
			t.Fatalf("%s: want a non-empty error message", test.path)
		}
	}
}

func TestUpstreamFailure(t *testing.T) {
	client := &exchangetest.Client{
		Name:         "fake",
		Capabilities: exchange.Capabilities{exchange.FetchPositions: true},
		Err:          errors.New("connection reset"),
	}
	ts := newTestServer(t, client)

	status, data := ts.do(t, "GET", api.AccountPath("main", "positions")+"?symbol=BTC/USDT", "")
	if status != http.StatusBadGateway {
		t.Fatalf("want %d, got %d", http.StatusBadGateway, status)
	}
	if msg := decodeError(t, data); msg != "exchange fake is unavailable" {
		t.Fatalf("want fixed upstream error message, got %q", msg)
	}
	if n := client.Calls(); n != 1 {
		t.Fatalf("want 1 exchange call, got %d", n)
	}
}

func TestWatcherLifecycle(t *testing.T) {
	ts := newTestServer(t, &exchangetest.Client{Name: "fake"})

	status, data := ts.do(t, "GET", api.WatchersPath, "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d", http.StatusOK, status)
	}
	if seeded := decodeData[[]*watcher.Config](t, data); len(seeded) != 2 {
		t.Fatalf("want 2 seeded watchers, got %d", len(seeded))
	}

	status, data = ts.do(t, "POST", api.WatchersPath, `{"symbol":"sol","exchange":"BINANCE","threshold":100,"direction":"above"}`)
	if status != http.StatusCreated {
		t.Fatalf("want %d, got %d (%s)", http.StatusCreated, status, data)
	}
	created := decodeData[*watcher.Config](t, data)
	if created.Symbol != "SOL" || created.Exchange != "binance" {
		t.Fatalf("want normalized symbol and exchange, got %+v", created)
	}
	if created.Frequency != watcher.Realtime || !created.Active {
		t.Fatalf("want realtime active watcher, got %+v", created)
	}
	if !created.Threshold.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("want threshold 100, got %s", created.Threshold)
	}

	status, data = ts.do(t, "PATCH", api.WatcherPath(created.ID), `{"active":false,"threshold":120.5}`)
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d (%s)", http.StatusOK, status, data)
	}
	updated := decodeData[*watcher.Config](t, data)
	if updated.Active || !updated.Threshold.Equal(decimal.RequireFromString("120.5")) {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Symbol != "SOL" || updated.Direction != watcher.Above {
		t.Fatalf("unchanged fields were modified: %+v", updated)
	}

	status, data = ts.do(t, "PATCH", api.WatcherPath(created.ID), `{}`)
	if status != http.StatusBadRequest {
		t.Fatalf("want %d for empty update, got %d (%s)", http.StatusBadRequest, status, data)
	}

	status, data = ts.do(t, "GET", api.WatcherPricePath(created.ID), "")
	if status != http.StatusOK {
		t.Fatalf("want %d, got %d (%s)", http.StatusOK, status, data)
	}
	spot := decodeData[*price.SpotPrice](t, data)
	if spot.Symbol != "SOL" || spot.Currency != "USD" || spot.Source != price.SourceMock {
		t.Fatalf("unexpected spot price %+v", spot)
	}

	status, _ = ts.do(t, "DELETE", api.WatcherPath(created.ID), "")
	if status != http.StatusNoContent {
		t.Fatalf("want %d, got %d", http.StatusNoContent, status)
	}

	for _, path := range []string{api.WatcherPath(created.ID), api.WatcherPricePath(created.ID)} {
		status, data = ts.do(t, "GET", path, "")
		if status != http.StatusNotFound {
			t.Fatalf("%s: want %d, got %d", path, http.StatusNotFound, status)
		}
		if msg := decodeError(t, data); msg == "" {
			t.Fatalf("%s: want non-empty error", path)
		}
	}
	if status, _ := ts.do(t, "DELETE", api.WatcherPath(created.ID), ""); status != http.StatusNotFound {
		t.Fatalf("want %d on second delete, got %d", http.StatusNotFound, status)
	}
}

func TestCreateWatcherValidation(t *testing.T) {
	ts := newTestServer(t, &exchangetest.Client{Name: "fake"})

	bodies := []string{
		`not json`,
		`{"exchange":"binance","threshold":1,"direction":"above"}`,
		`{"symbol":"BTC","exchange":"binance","threshold":0,"direction":"above"}`,
		`{"symbol":"BTC","exchange":"binance","threshold":1,"direction":"sideways"}`,
		`{"symbol":"BTC","exchange":"binance","threshold":1,"direction":"below","frequency":"2m"}`,
	}
	for _, body := range bodies {
		status, data := ts.do(t, "POST", api.WatchersPath, body)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: want %d, got %d (%s)", body, http.StatusBadRequest, status, data)
		}
	}
}
