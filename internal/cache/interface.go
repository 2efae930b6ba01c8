package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rovora/search-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// SearchCache defines the interface for caching search results.
type SearchCache interface {
	Get(ctx context.Context, key string) (*domain.SearchResponse, error)
	Set(ctx context.Context, key string, result *domain.SearchResponse, ttl time.Duration) error
	// Flush drops every cached response and reports how many were removed.
	Flush(ctx context.Context) (int64, error)
}

// BuildKey derives a cache key from normalised filters. Equal filters
// always map to the same key.
func BuildKey(prefix string, f domain.SearchFilters) string {
	data, err := json.Marshal(f)
	if err != nil {
		// SearchFilters holds only plain data; fall back to the Go syntax.
		data = []byte(fmt.Sprintf("%#v", f))
	}
	return fmt.Sprintf("%s:%016x", prefix, xxhash.Sum64(data))
}

type noopCache struct{}

// NewNoopCache returns a cache that stores nothing.
func NewNoopCache() SearchCache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*domain.SearchResponse, error) {
	return nil, ErrCacheMiss
}

func (noopCache) Set(context.Context, string, *domain.SearchResponse, time.Duration) error {
	return nil
}

func (noopCache) Flush(context.Context) (int64, error) { return 0, nil }
