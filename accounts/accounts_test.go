// Copyright (c) 2025 BVK Chaitanya

package accounts

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	data := `[
		{"id":"main","exchange":"Binance","apiKey":"k1","secret":"s1","address":"bc1q"},
		{"id":"alt","exchange":"coinex","apiKey":"k2","secret":"s2","password":"p"}
	]`
	d, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("want 2 accounts, got %d", d.Len())
	}
	if list := d.List(); list[0].ID != "main" || list[1].ID != "alt" {
		t.Fatalf("want configured order, got %s, %s", list[0].ID, list[1].ID)
	}
	a, ok := d.Find("main")
	if !ok {
		t.Fatalf("want account main to exist")
	}
	if a.Exchange != "binance" {
		t.Fatalf("want lowercased exchange, got %q", a.Exchange)
	}
	if _, ok := d.Find("MAIN"); ok {
		t.Fatalf("account lookups must be exact")
	}
	if creds := a.Credentials(); creds.APIKey != "k1" || creds.Secret != "s1" {
		t.Fatalf("unexpected credentials %#v", creds)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, data := range []string{"", "  ", "[]"} {
		d, err := Parse([]byte(data))
		if err != nil {
			t.Fatalf("%q: want nil error, got %v", data, err)
		}
		if d.Len() != 0 {
			t.Fatalf("%q: want empty directory, got %d", data, d.Len())
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`[{"id":"a","exchange":"binance","apiKey":"k","secret":"s"},{"id":"a","exchange":"coinex","apiKey":"k","secret":"s"}]`)); !errors.Is(err, os.ErrExist) {
		t.Fatalf("duplicate id: want os.ErrExist, got %v", err)
	}
	if _, err := Parse([]byte(`[{"id":"a","exchange":"binance","apiKey":"k"}]`)); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("missing secret: want os.ErrInvalid, got %v", err)
	}
	if _, err := Parse([]byte(`[{"exchange":"binance","apiKey":"k","secret":"s"}]`)); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("missing id: want os.ErrInvalid, got %v", err)
	}
	if _, err := Parse([]byte(`{"id":"a"}`)); err == nil {
		t.Fatalf("non-array: want error, got nil")
	}
}

func TestLogValueRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	a := &Account{ID: "main", Exchange: "binance", APIKey: "key-123", Secret: "secret-456"}
	logger.Info("loaded", "account", a)
	if s := buf.String(); strings.Contains(s, "key-123") || strings.Contains(s, "secret-456") {
		t.Fatalf("credentials leaked into logs: %s", s)
	}
	if s := buf.String(); !strings.Contains(s, "account.id=main") {
		t.Fatalf("want account id in logs, got %s", s)
	}
}
