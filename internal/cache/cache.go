package cache

import (
	"context"
	"time"
)

// InsightsCache holds rendered advisor analyses keyed by a stats digest so
// identical business snapshots skip the upstream model call.
type InsightsCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type NoopInsightsCache struct{}

func (NoopInsightsCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (NoopInsightsCache) Set(_ context.Context, _ string, _ string, _ time.Duration) error {
	return nil
}
