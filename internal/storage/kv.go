// internal/storage/kv.go

// Package storage persists the passport's mutable state as JSON documents under
// well-known keys. The medium is pluggable; callers only see key -> JSON value.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"

	"github.com/javajoker/dpp-backend/internal/config"
)

var ErrNotFound = errors.New("storage: key not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KV is a key -> JSON value store. Get decodes into dest and returns ErrNotFound
// when nothing is stored under key.
type KV interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// Key joins a namespace prefix and key parts with ':'.
func Key(prefix string, parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if prefix != "" {
		all = append(all, prefix)
	}
	all = append(all, parts...)
	return strings.Join(all, ":")
}

// Open returns the KV backend selected by cfg.Store.Driver. The database backend
// uses db; the redis backend returns a *RedisKV the caller must Close.
func Open(ctx context.Context, cfg *config.Config, db *gorm.DB) (KV, error) {
	switch cfg.Store.Driver {
	case "redis":
		kv, err := NewRedisKV(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "database", "":
		if db == nil {
			return nil, errors.New("storage: database backend needs a database connection")
		}
		return NewGormKV(db), nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Store.Driver)
	}
}
