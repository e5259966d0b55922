// Copyright (c) 2025 BVK Chaitanya

// Package accounts holds the read-only directory of exchange accounts the
// service can query.
package accounts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bvk/cryptowatch/exchange"
)

// Account holds an exchange account's identity and credentials.
type Account struct {
	ID       string `json:"id"`
	Exchange string `json:"exchange"`

	APIKey   string `json:"apiKey"`
	Secret   string `json:"secret"`
	Password string `json:"password,omitempty"`
	UID      string `json:"uid,omitempty"`

	Address string `json:"address,omitempty"`
}

func (a *Account) Check() error {
	if len(a.ID) == 0 {
		return fmt.Errorf("account id cannot be empty: %w", os.ErrInvalid)
	}
	if len(a.Exchange) == 0 {
		return fmt.Errorf("account %q: exchange name cannot be empty: %w", a.ID, os.ErrInvalid)
	}
	if len(a.APIKey) == 0 || len(a.Secret) == 0 {
		return fmt.Errorf("account %q: api key and secret are required: %w", a.ID, os.ErrInvalid)
	}
	return nil
}

// Credentials returns the credentials in the form expected by exchange
// client constructors.
func (a *Account) Credentials() *exchange.Credentials {
	return &exchange.Credentials{
		APIKey:   a.APIKey,
		Secret:   a.Secret,
		Password: a.Password,
		UID:      a.UID,
	}
}

// LogValue implements slog.LogValuer. Credentials are never logged.
func (a *Account) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("exchange", a.Exchange),
	)
}

// Directory is an immutable collection of accounts with unique ids.
type Directory struct {
	accounts []*Account
	idMap    map[string]*Account
}

// New creates a directory from the input accounts. Exchange names are
// lowercased.
func New(accounts []*Account) (*Directory, error) {
	d := &Directory{
		idMap: make(map[string]*Account),
	}
	for i, a := range accounts {
		if a == nil {
			return nil, fmt.Errorf("account at index %d is null: %w", i, os.ErrInvalid)
		}
		if err := a.Check(); err != nil {
			return nil, err
		}
		if _, ok := d.idMap[a.ID]; ok {
			return nil, fmt.Errorf("account id %q is duplicated: %w", a.ID, os.ErrExist)
		}
		v := *a
		v.Exchange = strings.ToLower(strings.TrimSpace(v.Exchange))
		d.accounts = append(d.accounts, &v)
		d.idMap[v.ID] = &v
	}
	return d, nil
}

// Parse creates a directory from a JSON array of accounts. Empty input
// creates an empty directory.
func Parse(data []byte) (*Directory, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(nil)
	}
	var accounts []*Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("could not parse exchange accounts json: %w", err)
	}
	return New(accounts)
}

// List returns all accounts in their configured order.
func (d *Directory) List() []*Account {
	return append([]*Account(nil), d.accounts...)
}

// Find returns the account with the exact id.
func (d *Directory) Find(id string) (*Account, bool) {
	a, ok := d.idMap[id]
	return a, ok
}

func (d *Directory) Len() int {
	return len(d.accounts)
}
