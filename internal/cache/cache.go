package cache

import (
	"context"
	"time"

	"assunnahmart/backend/internal/domain"
)

// RecapCache holds rendered opname recaps. Entries live for a short TTL as a
// safety net; the invalidation bus drops them eagerly whenever stock changes.
type RecapCache interface {
	Get(ctx context.Context, key string) (*domain.OpnameRecap, bool, error)
	Set(ctx context.Context, key string, value *domain.OpnameRecap, ttl time.Duration) error
	DropAll(ctx context.Context) error
}

type NoopRecapCache struct{}

func (NoopRecapCache) Get(_ context.Context, _ string) (*domain.OpnameRecap, bool, error) {
	return nil, false, nil
}

func (NoopRecapCache) Set(_ context.Context, _ string, _ *domain.OpnameRecap, _ time.Duration) error {
	return nil
}

func (NoopRecapCache) DropAll(_ context.Context) error {
	return nil
}
