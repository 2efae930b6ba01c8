package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rovora/search-service/internal/cache"
	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/internal/ranking"
	"github.com/rovora/search-service/internal/repository"
	"github.com/rovora/search-service/pkg/log"
	"github.com/rovora/search-service/pkg/storage"
)

const (
	minQueryRunes = 2

	suggestionLimit       = 5
	autocompleteGameLimit = 5
	autocompleteUserLimit = 3

	defaultAutocompleteLimit = 10
	defaultPopularLimit      = 10

	asyncWriteTimeout = 2 * time.Second
)

// Options configures the optional collaborators of the search service.
// Zero values disable caching, trends and media resolution.
type Options struct {
	Cache           cache.SearchCache
	CachePrefix     string
	CacheTTL        time.Duration
	Trends          TrendStore
	Media           storage.Storage
	MediaURLExpires time.Duration
	PopularDefaults []string
}

type searchServiceImpl struct {
	repo            repository.SearchRepository
	cache           cache.SearchCache
	cachePrefix     string
	cacheTTL        time.Duration
	trends          TrendStore
	media           storage.Storage
	mediaExpires    time.Duration
	popularDefaults []string
	sf              singleflight.Group
}

// NewSearchService creates a new search service.
func NewSearchService(repo repository.SearchRepository, opts Options) SearchService {
	searchCache := opts.Cache
	if searchCache == nil {
		searchCache = cache.NewNoopCache()
	}

	return &searchServiceImpl{
		repo:            repo,
		cache:           searchCache,
		cachePrefix:     opts.CachePrefix,
		cacheTTL:        opts.CacheTTL,
		trends:          opts.Trends,
		media:           opts.Media,
		mediaExpires:    opts.MediaURLExpires,
		popularDefaults: opts.PopularDefaults,
	}
}

func (s *searchServiceImpl) Search(ctx context.Context, filters domain.SearchFilters) (*domain.SearchResponse, error) {
	filters.Normalize()

	if filters.Query != "" {
		s.asyncRecordTrend(ctx, filters.Query)
	}

	cacheKey := cache.BuildKey(s.cachePrefix, filters)

	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		// Try cache
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			l := log.Ctx(ctx)
			l.Debug().Str(log.FieldCacheKey, cacheKey).Msg("search cache hit")
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldCacheKey, cacheKey).Msg("cache get error")
		}

		resp, err := s.search(ctx, filters)
		if err != nil {
			return nil, err
		}

		// Async write cache
		s.asyncCacheSet(ctx, cacheKey, resp)

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*domain.SearchResponse), nil
}

func (s *searchServiceImpl) search(ctx context.Context, filters domain.SearchFilters) (*domain.SearchResponse, error) {
	q := filters.SourceQuery()

	var (
		games                            []domain.GameRecord
		users                            []domain.UserRecord
		entries                          []domain.EntryRecord
		gameTotal, userTotal, entryTotal int
		facets                           *domain.Facets
		suggestions                      []domain.GameRecord
	)

	g, gCtx := errgroup.WithContext(ctx)

	if filters.Category.Includes(domain.ResultGame) {
		g.Go(func() error {
			var err error
			games, gameTotal, err = s.repo.SearchGames(gCtx, q)
			if err != nil {
				return fmt.Errorf("search games: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			facets, err = s.repo.Facets(gCtx, q)
			if err != nil {
				return fmt.Errorf("facets: %w", err)
			}
			return nil
		})
	}

	if filters.Category.Includes(domain.ResultUser) {
		g.Go(func() error {
			var err error
			users, userTotal, err = s.repo.SearchUsers(gCtx, q)
			if err != nil {
				return fmt.Errorf("search users: %w", err)
			}
			return nil
		})
	}

	if filters.Category.Includes(domain.ResultEntry) {
		g.Go(func() error {
			var err error
			entries, entryTotal, err = s.repo.SearchEntries(gCtx, q)
			if err != nil {
				return fmt.Errorf("search entries: %w", err)
			}
			return nil
		})
	}

	if utf8.RuneCountInString(filters.Query) >= minQueryRunes {
		g.Go(func() error {
			var err error
			suggestions, err = s.repo.MatchGameTitles(gCtx, filters.Query, suggestionLimit)
			if err != nil {
				return fmt.Errorf("suggestions: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in a fixed source order so ties are independent of which
	// fetch finished first.
	results := make([]domain.SearchResult, 0, len(games)+len(users)+len(entries))
	for i := range games {
		results = append(results, s.gameResult(ctx, filters.Query, &games[i]))
	}
	for i := range users {
		results = append(results, s.userResult(ctx, filters.Query, &users[i]))
	}
	for i := range entries {
		results = append(results, s.entryResult(ctx, filters.Query, &entries[i]))
	}

	ranking.Sort(results, filters.SortBy, filters.SortDirection)

	resp := &domain.SearchResponse{
		Results:     ranking.Window(results, filters.Offset, filters.Limit),
		TotalCount:  gameTotal + userTotal + entryTotal,
		Facets:      domain.EmptyFacets(),
		Suggestions: make([]string, 0, len(suggestions)),
	}
	if facets != nil {
		resp.Facets = *facets
	}
	for _, m := range suggestions {
		resp.Suggestions = append(resp.Suggestions, m.Title)
	}

	l := log.Ctx(ctx)
	l.Debug().
		Str(log.FieldQuery, filters.Query).
		Str(log.FieldCategory, string(filters.Category)).
		Int(log.FieldResults, len(resp.Results)).
		Int(log.FieldTotal, resp.TotalCount).
		Msg("search completed")

	return resp, nil
}

func (s *searchServiceImpl) Autocomplete(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	if utf8.RuneCountInString(query) < minQueryRunes {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}

	var (
		games []domain.GameRecord
		users []domain.UserRecord
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		games, err = s.repo.MatchGameTitles(gCtx, query, autocompleteGameLimit)
		if err != nil {
			return fmt.Errorf("match games: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		users, err = s.repo.MatchUserNames(gCtx, query, autocompleteUserLimit)
		if err != nil {
			return fmt.Errorf("match users: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(games)+len(users))
	for i := range games {
		suggestions = append(suggestions, s.gameSuggestion(ctx, &games[i]))
	}
	for i := range users {
		suggestions = append(suggestions, s.userSuggestion(ctx, &users[i]))
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (s *searchServiceImpl) PopularSearches(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}

	if s.trends != nil {
		top, err := s.trends.Top(ctx, limit)
		if err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("trend read error, serving defaults")
		} else if len(top) > 0 {
			return top, nil
		}
	}

	n := min(limit, len(s.popularDefaults))
	out := make([]string, n)
	copy(out, s.popularDefaults[:n])
	return out, nil
}

func (s *searchServiceImpl) asyncCacheSet(ctx context.Context, key string, resp *domain.SearchResponse) {
	bg := log.Detach(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, asyncWriteTimeout)
		defer cancel()

		if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("cache set error")
		}
	}()
}

func (s *searchServiceImpl) asyncRecordTrend(ctx context.Context, query string) {
	if s.trends == nil {
		return
	}

	bg := log.Detach(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, asyncWriteTimeout)
		defer cancel()

		if err := s.trends.Record(ctx, query); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldQuery, query).Msg("trend record error")
		}
	}()
}
