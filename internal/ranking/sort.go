package ranking

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rovora/search-service/internal/domain"
)

// Sort orders results in place by field. Desc puts greater keys first.
// The sort is stable, so ties keep their input order.
func Sort(results []domain.SearchResult, field domain.SortField, dir domain.SortDirection) {
	compare := comparator(field)

	slices.SortStableFunc(results, func(a, b domain.SearchResult) int {
		c := compare(&a, &b)
		if dir == domain.SortDesc {
			return -c
		}
		return c
	})
}

func comparator(field domain.SortField) func(a, b *domain.SearchResult) int {
	switch field {
	case domain.SortTitle:
		// A Collator keeps internal buffers, so each sort gets its own.
		col := collate.New(language.English)
		return func(a, b *domain.SearchResult) int {
			return col.CompareString(a.Title, b.Title)
		}
	case domain.SortDate:
		return func(a, b *domain.SearchResult) int {
			return a.SortDate.Compare(b.SortDate)
		}
	case domain.SortRating:
		return func(a, b *domain.SearchResult) int {
			return cmp.Compare(a.SortRating, b.SortRating)
		}
	case domain.SortPopularity:
		return func(a, b *domain.SearchResult) int {
			return cmp.Compare(a.SortPopularity, b.SortPopularity)
		}
	default:
		return func(a, b *domain.SearchResult) int {
			return cmp.Compare(a.RelevanceScore, b.RelevanceScore)
		}
	}
}

// Window returns results[offset:offset+limit], clipped to the slice.
func Window(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(results) {
		return []domain.SearchResult{}
	}
	end := min(offset+limit, len(results))
	return results[offset:end]
}
