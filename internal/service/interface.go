package service

import (
	"context"

	"github.com/rovora/search-service/internal/domain"
)

// SearchService defines the interface for search business logic.
type SearchService interface {
	Search(ctx context.Context, filters domain.SearchFilters) (*domain.SearchResponse, error)
	Autocomplete(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
	PopularSearches(ctx context.Context, limit int) ([]string, error)
}

// TrendStore aggregates recent queries for PopularSearches.
type TrendStore interface {
	Record(ctx context.Context, query string) error
	Top(ctx context.Context, limit int) ([]string, error)
}
