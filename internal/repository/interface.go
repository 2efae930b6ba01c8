package repository

import (
	"context"

	"github.com/rovora/search-service/internal/domain"
)

// SearchRepository is the read-only data access used by search. Each
// Search* call returns at most q.Limit records, best matches first under
// q.Sort with id as the final tie-break, plus the full match count.
type SearchRepository interface {
	SearchGames(ctx context.Context, q domain.SourceQuery) ([]domain.GameRecord, int, error)
	SearchUsers(ctx context.Context, q domain.SourceQuery) ([]domain.UserRecord, int, error)
	SearchEntries(ctx context.Context, q domain.SourceQuery) ([]domain.EntryRecord, int, error)

	// Facets counts genres, platforms and library statuses over the games
	// matching q.
	Facets(ctx context.Context, q domain.SourceQuery) (*domain.Facets, error)

	// MatchGameTitles returns games whose title contains text.
	MatchGameTitles(ctx context.Context, text string, limit int) ([]domain.GameRecord, error)
	// MatchUserNames returns users whose username or display name contains text.
	MatchUserNames(ctx context.Context, text string, limit int) ([]domain.UserRecord, error)
}
