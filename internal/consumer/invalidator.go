package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rovora/search-service/internal/cache"
	"github.com/rovora/search-service/pkg/log"
)

var ErrMalformedEvent = errors.New("malformed catalog change event")

// searchedEntities are the entities whose changes can alter a search response.
var searchedEntities = map[string]bool{
	EntityGame:     true,
	EntityUser:     true,
	EntityEntry:    true,
	EntityGenre:    true,
	EntityPlatform: true,
}

// CacheInvalidator flushes cached search responses on catalog changes.
type CacheInvalidator struct {
	cache cache.SearchCache
}

// NewCacheInvalidator creates a handler that flushes c.
func NewCacheInvalidator(c cache.SearchCache) *CacheInvalidator {
	return &CacheInvalidator{cache: c}
}

// HandleCatalogChange flushes the cache for entities that feed search and
// ignores the rest.
func (h *CacheInvalidator) HandleCatalogChange(ctx context.Context, event *CatalogChangeEvent) error {
	if !searchedEntities[event.Entity] {
		return nil
	}

	n, err := h.cache.Flush(ctx)
	if err != nil {
		return fmt.Errorf("flush search cache: %w", err)
	}

	l := log.Ctx(ctx)
	l.Debug().
		Str("entity", event.Entity).
		Str("id", event.ID).
		Str("op", event.Op).
		Int64("flushed", n).
		Msg("search cache invalidated")
	return nil
}

// decodeEvent parses a message payload. Events without an entity are
// rejected.
func decodeEvent(value []byte) (*CatalogChangeEvent, error) {
	var event CatalogChangeEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Entity == "" {
		return nil, fmt.Errorf("%w: missing entity", ErrMalformedEvent)
	}
	return &event, nil
}
