// Copyright (c) 2025 BVK Chaitanya

package watcher

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
)

func newTestRegistry() (*Registry, *clock.Mock) {
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(clk), clk
}

func TestSeeds(t *testing.T) {
	r, _ := newTestRegistry()

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("want 2 seeded watchers, got %d", len(list))
	}
	btc, eth := list[0], list[1]
	if btc.Symbol != "BTC" || btc.Exchange != "binance" || btc.Direction != Above || btc.Frequency != Realtime || !btc.Threshold.Equal(decimal.NewFromInt(65000)) {
		t.Fatalf("unexpected first seed %#v", btc)
	}
	if eth.Symbol != "ETH" || eth.Exchange != "coinbase" || eth.Direction != Below || eth.Frequency != OneMinute || !eth.Threshold.Equal(decimal.NewFromInt(3200)) {
		t.Fatalf("unexpected second seed %#v", eth)
	}
	if !btc.Active || !eth.Active {
		t.Fatalf("seeded watchers must be active")
	}
	if btc.ID == eth.ID {
		t.Fatalf("seeded watchers must have unique ids")
	}
	if !btc.CreatedAt.Equal(eth.CreatedAt) || !btc.CreatedAt.Equal(btc.UpdatedAt) || !eth.CreatedAt.Equal(eth.UpdatedAt) {
		t.Fatalf("seeded watchers must share one timestamp")
	}
}

func TestCreateNormalizes(t *testing.T) {
	r, _ := newTestRegistry()

	input := &CreateInput{
		Symbol:    "sol",
		Exchange:  "BINANCE",
		Threshold: decimal.NewFromInt(100),
		Direction: Above,
	}
	if err := input.Check(); err != nil {
		t.Fatal(err)
	}
	c := r.Create(input)
	if c.Symbol != "SOL" {
		t.Fatalf("want SOL, got %q", c.Symbol)
	}
	if c.Exchange != "binance" {
		t.Fatalf("want binance, got %q", c.Exchange)
	}
	if c.Frequency != Realtime {
		t.Fatalf("want realtime, got %q", c.Frequency)
	}
	if !c.Active {
		t.Fatalf("want active watcher")
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("want createdAt == updatedAt, got %v and %v", c.CreatedAt, c.UpdatedAt)
	}

	got, ok := r.Get(c.ID)
	if !ok {
		t.Fatalf("want created watcher to exist")
	}
	if *got != *c {
		t.Fatalf("want %#v, got %#v", c, got)
	}
}

func TestCreateKeepsSymbolText(t *testing.T) {
	r, _ := newTestRegistry()

	for _, symbol := range []string{" sol", "btc ", "eth-usd", "Doge"} {
		c := r.Create(&CreateInput{Symbol: symbol, Exchange: "Coinex", Threshold: decimal.NewFromInt(1), Direction: Below})
		if want := strings.ToUpper(symbol); c.Symbol != want {
			t.Fatalf("want %q, got %q", want, c.Symbol)
		}
		if c.Exchange != "coinex" {
			t.Fatalf("want coinex, got %q", c.Exchange)
		}
	}
}

func TestCopyOut(t *testing.T) {
	r, _ := newTestRegistry()

	list := r.List()
	id := list[0].ID
	list[0].Symbol = "MUTATED"
	list[0].Active = false

	got, _ := r.Get(id)
	if got.Symbol != "BTC" || !got.Active {
		t.Fatalf("list snapshot mutation leaked into the registry: %#v", got)
	}
	got.Threshold = decimal.NewFromInt(1)
	again, _ := r.Get(id)
	if !again.Threshold.Equal(decimal.NewFromInt(65000)) {
		t.Fatalf("get snapshot mutation leaked into the registry: %#v", again)
	}
}

func TestUpdate(t *testing.T) {
	r, clk := newTestRegistry()

	c := r.Create(&CreateInput{Symbol: "eth", Exchange: "coinex", Threshold: decimal.NewFromInt(3000), Direction: Below, Frequency: FiveMinutes})

	clk.Add(time.Minute)
	active := false
	u1, ok := r.Update(c.ID, &UpdateInput{Active: &active})
	if !ok {
		t.Fatalf("want update to succeed")
	}
	if u1.Active {
		t.Fatalf("want inactive watcher")
	}
	if u1.Symbol != "ETH" || u1.Direction != Below || u1.Frequency != FiveMinutes || !u1.Threshold.Equal(c.Threshold) {
		t.Fatalf("fields not named in the update must be retained: %#v", u1)
	}
	if !u1.UpdatedAt.After(u1.CreatedAt) {
		t.Fatalf("want updatedAt after createdAt, got %v and %v", u1.UpdatedAt, u1.CreatedAt)
	}
	if !u1.CreatedAt.Equal(c.CreatedAt) || u1.ID != c.ID {
		t.Fatalf("id and createdAt must never change")
	}

	// Wall clock going backwards must not move updatedAt backwards.
	clk.Add(-time.Hour)
	threshold := decimal.NewFromInt(2500)
	u2, ok := r.Update(c.ID, &UpdateInput{Threshold: &threshold})
	if !ok {
		t.Fatalf("want update to succeed")
	}
	if u2.UpdatedAt.Before(u1.UpdatedAt) {
		t.Fatalf("updatedAt moved backwards from %v to %v", u1.UpdatedAt, u2.UpdatedAt)
	}
	if u2.Active {
		t.Fatalf("active flag must be retained across updates")
	}
	if !u2.Threshold.Equal(threshold) {
		t.Fatalf("want threshold %s, got %s", threshold, u2.Threshold)
	}

	if _, ok := r.Update("missing", &UpdateInput{Active: &active}); ok {
		t.Fatalf("want update of a missing watcher to fail")
	}
}

func TestRemove(t *testing.T) {
	r, _ := newTestRegistry()

	a := r.Create(&CreateInput{Symbol: "btc", Exchange: "binance", Threshold: decimal.NewFromInt(1), Direction: Above})
	b := r.Create(&CreateInput{Symbol: "eth", Exchange: "binance", Threshold: decimal.NewFromInt(1), Direction: Above})
	if n := r.Len(); n != 4 {
		t.Fatalf("want 4 watchers, got %d", n)
	}

	if !r.Remove(a.ID) {
		t.Fatalf("want first remove to succeed")
	}
	if r.Remove(a.ID) {
		t.Fatalf("want second remove to return false")
	}
	if _, ok := r.Get(a.ID); ok {
		t.Fatalf("want get after remove to fail")
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("want 3 watchers, got %d", len(list))
	}
	if list[2].ID != b.ID {
		t.Fatalf("want insertion order to be preserved")
	}
}

func TestConcurrentCreates(t *testing.T) {
	r := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Create(&CreateInput{Symbol: "btc", Exchange: "binance", Threshold: decimal.NewFromInt(1), Direction: Above})
		}()
	}
	wg.Wait()

	if n := len(r.List()); n != 52 {
		t.Fatalf("want 52 watchers, got %d", n)
	}
}

func TestInputChecks(t *testing.T) {
	bad := []*CreateInput{
		{Symbol: "", Exchange: "binance", Threshold: decimal.NewFromInt(1), Direction: Above},
		{Symbol: "btc", Exchange: " ", Threshold: decimal.NewFromInt(1), Direction: Above},
		{Symbol: "btc", Exchange: "binance", Threshold: decimal.Zero, Direction: Above},
		{Symbol: "btc", Exchange: "binance", Threshold: decimal.NewFromInt(-1), Direction: Above},
		{Symbol: "btc", Exchange: "binance", Threshold: decimal.NewFromInt(1), Direction: "sideways"},
		{Symbol: "btc", Exchange: "binance", Threshold: decimal.NewFromInt(1), Direction: Above, Frequency: "1h"},
	}
	for i, v := range bad {
		if err := v.Check(); !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("%d: want os.ErrInvalid, got %v", i, err)
		}
	}

	if err := new(UpdateInput).Check(); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("empty update: want os.ErrInvalid, got %v", err)
	}
	negative := decimal.NewFromInt(-5)
	if err := (&UpdateInput{Threshold: &negative}).Check(); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("negative threshold: want os.ErrInvalid, got %v", err)
	}
	freq := FifteenMinutes
	if err := (&UpdateInput{Frequency: &freq}).Check(); err != nil {
		t.Fatalf("valid update: want nil, got %v", err)
	}
}
