package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DealSource fetches the line items of a deal from the system that stores them
type DealSource interface {
	ListLineItems(ctx context.Context, dealID string) ([]Product, error)
}
