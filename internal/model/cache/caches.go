package cache

import (
	"github.com/redis/go-redis/v9"

	"barricade.gg/backend/internal/pkg/cache"
)

// Caches holds the caches shared by services.
type Caches struct {
	// PlayerReported caches whether a player id appears in any report.
	PlayerReported cache.Store[bool]
}

func New(client *redis.Client) *Caches {
	return &Caches{
		PlayerReported: cache.NewSet[bool](client, "player#reported"),
	}
}

// NewLocal returns in-process caches.
func NewLocal() *Caches {
	return &Caches{
		PlayerReported: cache.NewLocal[bool](),
	}
}
