// Package cache provides the read-through product cache used by the catalog.
package cache

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
)

// ProductCache caches catalog reads keyed by product ID. Callers treat every
// error as a miss, so a broken cache degrades to direct store reads.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Product, bool, error)
	Set(ctx context.Context, product *model.Product) error
	Invalidate(ctx context.Context, id uuid.UUID) error
	Close() error
}

// NopCache never hits and never fails. It is wired when redis is disabled or
// unreachable at startup.
type NopCache struct{}

// NewNopCache creates a no-op product cache.
func NewNopCache() *NopCache {
	return &NopCache{}
}

func (*NopCache) Get(_ context.Context, _ uuid.UUID) (*model.Product, bool, error) {
	return nil, false, nil
}

func (*NopCache) Set(_ context.Context, _ *model.Product) error {
	return nil
}

func (*NopCache) Invalidate(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (*NopCache) Close() error {
	return nil
}
