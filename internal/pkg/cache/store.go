package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("cache: key not found")

// Store is a keyed cache of T values.
type Store[T any] interface {
	// Get writes the cached value to dest, or returns ErrNotFound.
	Get(ctx context.Context, key string, dest *T) error
	Set(ctx context.Context, key string, value T, expire time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GetSet returns the cached value of key, computing and caching it with
// valueFunc on a miss. A failing cache read falls through to valueFunc.
func GetSet[T any](ctx context.Context, s Store[T], key string, valueFunc func() (T, error), expire time.Duration) (T, error) {
	var dest T
	err := s.Get(ctx, key, &dest)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, computing value")
	}

	value, err := valueFunc()
	if err != nil {
		return value, err
	}
	if err := s.Set(ctx, key, value, expire); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to set value to cache")
	}
	return value, nil
}
