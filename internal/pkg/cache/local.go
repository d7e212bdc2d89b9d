package cache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Local is an in-process Store.
type Local[T any] struct {
	c *cache.Cache
}

var _ Store[any] = (*Local[any])(nil)

func NewLocal[T any]() *Local[T] {
	return &Local[T]{c: cache.New(cache.NoExpiration, time.Minute*10)}
}

func (c *Local[T]) Get(_ context.Context, key string, dest *T) error {
	v, ok := c.c.Get(key)
	if !ok {
		return ErrNotFound
	}
	*dest = v.(T)
	return nil
}

func (c *Local[T]) Set(_ context.Context, key string, value T, expire time.Duration) error {
	c.c.Set(key, value, expire)
	return nil
}

func (c *Local[T]) Delete(_ context.Context, key string) error {
	c.c.Delete(key)
	return nil
}
