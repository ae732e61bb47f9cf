package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/getmentor/mentor-finder/pkg/metrics"
)

// KeyTokenSource reads the token stored under fixed keys. The store is
// consulted on every call; nothing is cached here.
type KeyTokenSource struct {
	store    Store
	keys     []string
	fallback string
}

// NewKeyTokenSource returns a source reading keys in order; the first key
// holding a value wins. fallback is returned when none does. It may be
// empty, in which case requests go out without a token.
func NewKeyTokenSource(store Store, fallback string, keys ...string) *KeyTokenSource {
	return &KeyTokenSource{store: store, keys: keys, fallback: fallback}
}

func (s *KeyTokenSource) Token(ctx context.Context) (string, error) {
	backend := s.store.Backend()

	for _, key := range s.keys {
		token, err := s.store.Get(ctx, key)
		switch {
		case err == nil:
			metrics.TokenStoreReads.WithLabelValues(backend, "hit").Inc()
			return token, nil
		case errors.Is(err, ErrNotFound):
			metrics.TokenStoreReads.WithLabelValues(backend, "miss").Inc()
		default:
			metrics.TokenStoreReads.WithLabelValues(backend, "error").Inc()
			return "", fmt.Errorf("failed to read auth token: %w", err)
		}
	}

	return s.fallback, nil
}

// ViewTokenKey namespaces the token key per view
func ViewTokenKey(baseKey, viewID string) string {
	return "mentor-list:view:" + viewID + ":" + baseKey
}
