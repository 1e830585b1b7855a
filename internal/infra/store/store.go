// Package store persists per-user play history.
package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/config"
)

// Store loads and saves the play history of each user.
// A user without stored history loads as an empty History.
type Store interface {
	Load(ctx context.Context, user string) (track.History, error)
	Save(ctx context.Context, user string, h track.History) error
	Close() error
}

// Open creates the backend selected by cfg.
func Open(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "redis":
		return NewRedisStore(cfg.RedisURL)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, errors.Newf("unknown history backend: %s", cfg.Backend)
	}
}
