// Package storage provides the durable client-side key-value store that
// survives process restarts: the persisted identity, the bearer token and
// one-shot flags live here.
package storage

import "errors"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a small durable key-value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	// Delete is a no-op for missing keys.
	Delete(key string) error
	Close() error
}
