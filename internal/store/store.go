package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("key not found")

const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindBolt   = "bolt"
)

// Store is a string key-value store. Implementations are safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

func Open(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite, "":
		return NewSQLiteStore(path)
	case KindBolt:
		return NewBoltStore(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
