package repository

import (
	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/internal/ranking"
)

// Title collation and the relevance score cannot be reproduced exactly by a
// database ORDER BY, so for those orders a source reads the sort keys of
// every match and ranks them with the same code the merged list uses. The
// source's top rows are then a prefix of the merged order, whatever the
// limit.

// rankedInGo reports whether q's order is decided by rankKeys rather than
// by the backend.
func rankedInGo(q domain.SourceQuery) bool {
	switch q.Sort {
	case domain.SortTitle:
		return true
	case domain.SortDate, domain.SortRating, domain.SortPopularity:
		return false
	default:
		// Without text every candidate scores the same and id order decides.
		return q.Text != ""
	}
}

// sortKey is the part of a candidate that title and relevance ordering read.
type sortKey struct {
	ID        string
	Title     string
	Secondary string
}

// rankKeys orders keys, which must arrive in id order, and returns the ids
// of the first q.Limit.
func rankKeys(keys []sortKey, q domain.SourceQuery) []string {
	candidates := make([]domain.SearchResult, len(keys))
	for i, k := range keys {
		candidates[i] = domain.SearchResult{ID: k.ID, Title: k.Title}
		if q.Sort != domain.SortTitle {
			candidates[i].RelevanceScore = ranking.Score(q.Text, k.Title, k.Secondary)
		}
	}
	ranking.Sort(candidates, q.Sort, q.Direction)

	top := ranking.Window(candidates, 0, q.Limit)
	ids := make([]string, len(top))
	for i := range top {
		ids[i] = top[i].ID
	}
	return ids
}

// inOrder arranges rows to follow ids. Rows whose id is not listed are
// dropped.
func inOrder[T any](rows []T, ids []string, id func(*T) string) []T {
	pos := make(map[string]int, len(ids))
	for i, v := range ids {
		pos[v] = i
	}

	slots := make([]*T, len(ids))
	for i := range rows {
		if p, ok := pos[id(&rows[i])]; ok {
			slots[p] = &rows[i]
		}
	}

	out := make([]T, 0, len(ids))
	for _, row := range slots {
		if row != nil {
			out = append(out, *row)
		}
	}
	return out
}
