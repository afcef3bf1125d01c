// Package store provides the key-value byte store behind every feed
// collection. Each collection lives under one fixed key and is rewritten
// whole on every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/db"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("store: key not found")

// Keys of the persisted collections.
const (
	KeyPosts         = "whispHaven_posts"
	KeyComments      = "whispHaven_comments"
	KeyLikedPosts    = "whispHaven_liked_posts"
	KeyUserReactions = "whispHaven_user_reactions"

	userKeyPrefix = "whispHavenUser:"
)

// UserKey is the key holding the profile of userID.
func UserKey(userID string) string {
	return userKeyPrefix + userID
}

// Store is a key-value byte store. Implementations are safe for concurrent
// use, but a Get followed by a Set is not atomic.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by the scheme of url:
// memory://, sqlite://, postgres://, redis:// or mongodb://.
// An empty url opens a memory store.
func Open(ctx context.Context, url string, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	scheme, _, _ := strings.Cut(url, "://")

	switch scheme {
	case "", "memory":
		log.Info("using in-memory store")
		return NewMemory(), nil
	case "sqlite", "postgres", "postgresql":
		gdb, err := db.Init(url, log)
		if err != nil {
			return nil, err
		}
		return NewSQL(gdb)
	case "redis", "rediss":
		return DialRedis(ctx, url)
	case "mongodb", "mongodb+srv":
		return DialMongo(ctx, url)
	}
	return nil, fmt.Errorf("store: unsupported url scheme %q", scheme)
}
