// Package tokenstore holds auth tokens in a key-value store and resolves
// them on every call.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no value is stored under the key
var ErrNotFound = errors.New("token not found")

// Store is a small key-value store for auth tokens
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Backend names the implementation for metrics and health output
	Backend() string
}
