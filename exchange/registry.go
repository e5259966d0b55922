// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
)

// NewFunc creates a client for an exchange account.
type NewFunc func(creds *Credentials, opts *Options) (Client, error)

// Registry maps exchange names to client constructors. Names are case
// insensitive.
type Registry struct {
	mu sync.RWMutex

	newFuncMap map[string]NewFunc
}

func NewRegistry() *Registry {
	return &Registry{
		newFuncMap: make(map[string]NewFunc),
	}
}

// Register adds a constructor for the exchange name. Returns os.ErrExist if
// the name is already registered.
func (r *Registry) Register(name string, f NewFunc) error {
	if len(name) == 0 || f == nil {
		return os.ErrInvalid
	}
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.newFuncMap[key]; ok {
		return fmt.Errorf("exchange %q is already registered: %w", name, os.ErrExist)
	}
	r.newFuncMap[key] = f
	return nil
}

// Lookup returns the constructor for the exchange name.
func (r *Registry) Lookup(name string) (NewFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.newFuncMap[strings.ToLower(name)]
	return f, ok
}

// Names returns the registered exchange names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for k := range r.newFuncMap {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
