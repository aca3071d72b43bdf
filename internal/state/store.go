// Package state persists the last emitted signal identity per key.
//
// Stores perform no cross-process locking. Running at most one evaluation at a
// time against a store is the deployment's responsibility.
package state

import (
	"context"
	"fmt"
	"strings"

	"SignalSentinel/internal/model"
)

// Store is a string key/value mapping that survives across runs.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set creates or overwrites the value of key.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Lister is implemented by stores that can enumerate their records.
type Lister interface {
	List(ctx context.Context) (map[string]string, error)
}

// KeyScope selects the deduplication granularity.
type KeyScope string

const (
	// ScopeInstrument keeps one identity per symbol.
	ScopeInstrument KeyScope = "instrument"
	// ScopeStrategy keeps one identity per symbol and signal kind.
	ScopeStrategy KeyScope = "strategy"
)

// ParseKeyScope validates a configured scope name.
func ParseKeyScope(s string) (KeyScope, error) {
	switch KeyScope(strings.ToLower(s)) {
	case ScopeInstrument, "":
		return ScopeInstrument, nil
	case ScopeStrategy:
		return ScopeStrategy, nil
	}
	return "", fmt.Errorf("unknown key scope %q", s)
}

// Key returns the store key for a symbol and signal kind under this scope.
func (s KeyScope) Key(symbol string, kind model.SignalKind) string {
	if s == ScopeStrategy && kind != "" {
		return symbol + "|" + string(kind)
	}
	return symbol
}

// DigestKey returns the key holding the date of the last digest sent for symbol.
func DigestKey(symbol string) string {
	return symbol + ":digest"
}
