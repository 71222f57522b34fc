package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// NewFromConfig builds a Store for the configured backend type.
func NewFromConfig(storageType, path string) (Store, error) {
	switch storageType {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolving storage path: %w", err)
			}
			path = filepath.Join(home, ".social", "client.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
