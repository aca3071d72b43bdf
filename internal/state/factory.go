package state

import (
	"context"
	"fmt"
)

// Options selects and configures a store backend.
type Options struct {
	Backend       string // file, sqlite, redis or memory
	FilePath      string
	SQLitePath    string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open constructs the configured store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "file", "":
		return NewFileStore(opts.FilePath)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "redis":
		ro, err := ParseRedisURL(opts.RedisURL, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return NewRedisStore(ctx, ro, opts.RedisPrefix)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown state backend %q", opts.Backend)
}
