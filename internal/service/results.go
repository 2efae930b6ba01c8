package service

import (
	"context"

	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/internal/markdown"
	"github.com/rovora/search-service/internal/ranking"
	"github.com/rovora/search-service/pkg/log"
	"github.com/rovora/search-service/pkg/storage"
)

func (s *searchServiceImpl) gameResult(ctx context.Context, query string, g *domain.GameRecord) domain.SearchResult {
	r := domain.SearchResult{
		Type:        domain.ResultGame,
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		ImageURL:    s.imageURL(ctx, g.CoverImage),
		Metadata: map[string]any{
			"developer":   g.Developer,
			"publisher":   g.Publisher,
			"releaseDate": g.ReleaseDate,
			"score":       g.CriticScore,
			"slug":        g.Slug,
			"popularity":  g.Popularity,
		},
		RelevanceScore: ranking.Score(query, g.Title, g.Description),
		SortPopularity: g.Popularity,
	}
	if g.ReleaseDate != nil {
		r.SortDate = *g.ReleaseDate
	}
	if g.CriticScore != nil {
		r.SortRating = float64(*g.CriticScore)
	}
	return r
}

// userResult leaves the date and rating keys at zero; users sort as the
// oldest and lowest rated.
func (s *searchServiceImpl) userResult(ctx context.Context, query string, u *domain.UserRecord) domain.SearchResult {
	meta := map[string]any{
		"username":    u.Username,
		"displayName": u.DisplayName,
		"isVerified":  u.IsVerified,
		"joinDate":    u.JoinedAt,
		"followers":   u.Followers,
	}
	if len(u.Library) > 0 {
		meta["library"] = u.Library
	}

	return domain.SearchResult{
		Type:           domain.ResultUser,
		ID:             u.ID,
		Title:          u.Name(),
		Description:    u.Bio,
		ImageURL:       s.imageURL(ctx, u.AvatarURL),
		Metadata:       meta,
		RelevanceScore: ranking.Score(query, u.Name(), u.Bio),
		SortPopularity: u.Followers,
	}
}

func (s *searchServiceImpl) entryResult(ctx context.Context, query string, e *domain.EntryRecord) domain.SearchResult {
	return domain.SearchResult{
		Type:        domain.ResultEntry,
		ID:          e.ID,
		Title:       e.Title,
		Description: markdown.Excerpt(e.Content, markdown.ExcerptRunes),
		ImageURL:    s.imageURL(ctx, e.GameCover),
		Metadata: map[string]any{
			"entryType": e.EntryType,
			"gameId":    e.GameID,
			"gameName":  e.GameTitle,
			"author":    e.Author(),
			"createdAt": e.CreatedAt,
			"likes":     e.Likes,
		},
		RelevanceScore: ranking.Score(query, e.Title, e.Content),
		SortDate:       e.CreatedAt,
		SortPopularity: e.Likes,
	}
}

func (s *searchServiceImpl) gameSuggestion(ctx context.Context, g *domain.GameRecord) domain.Suggestion {
	return domain.Suggestion{
		Text:     g.Title,
		Type:     domain.SuggestionGame,
		Metadata: map[string]any{"id": g.ID, "image": s.imageURL(ctx, g.CoverImage)},
	}
}

func (s *searchServiceImpl) userSuggestion(ctx context.Context, u *domain.UserRecord) domain.Suggestion {
	return domain.Suggestion{
		Text:     u.Name(),
		Type:     domain.SuggestionUser,
		Metadata: map[string]any{"username": u.Username, "avatar": s.imageURL(ctx, u.AvatarURL)},
	}
}

// imageURL resolves a stored media reference. A resolution failure drops
// the image rather than the result.
func (s *searchServiceImpl) imageURL(ctx context.Context, ref string) string {
	u, err := storage.Resolve(ctx, s.media, ref, s.mediaExpires)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("ref", ref).Msg("media url resolution failed")
		return ""
	}
	return u
}
