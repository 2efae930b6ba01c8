package repository

import (
	"cmp"
	"slices"

	"github.com/rovora/search-service/internal/domain"
)

// sortBuckets orders buckets by count desc, then name asc, and never
// returns nil.
func sortBuckets(b []domain.FacetBucket) []domain.FacetBucket {
	if b == nil {
		return []domain.FacetBucket{}
	}
	slices.SortFunc(b, func(x, y domain.FacetBucket) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return b
}
