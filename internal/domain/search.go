package domain

import "time"

// Category selects which sources a search consults.
type Category string

const (
	CategoryAll     Category = "all"
	CategoryGames   Category = "games"
	CategoryUsers   Category = "users"
	CategoryEntries Category = "entries"
)

// Includes reports whether results of type t are searched under c.
func (c Category) Includes(t ResultType) bool {
	switch c {
	case CategoryAll, "":
		return true
	case CategoryGames:
		return t == ResultGame
	case CategoryUsers:
		return t == ResultUser
	case CategoryEntries:
		return t == ResultEntry
	default:
		return false
	}
}

// SortField is the key the merged result list is ordered by.
type SortField string

const (
	SortRelevance  SortField = "relevance"
	SortTitle      SortField = "title"
	SortDate       SortField = "date"
	SortRating     SortField = "rating"
	SortPopularity SortField = "popularity"
)

// SortDirection orders a SortField. Desc puts greater keys first.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchFilters is the normalised input of a federated search.
type SearchFilters struct {
	Query         string        `json:"q"`
	Category      Category      `json:"category"`
	Genres        []string      `json:"genres,omitempty"`
	Platforms     []string      `json:"platforms,omitempty"`
	Statuses      []PlayStatus  `json:"statuses,omitempty"`
	DateRange     DateRange     `json:"dateRange"`
	Rating        RatingRange   `json:"rating"`
	SortBy        SortField     `json:"sortBy"`
	SortDirection SortDirection `json:"sortDirection"`
	Limit         int           `json:"limit"`
	Offset        int           `json:"offset"`
}

// Normalize fills defaults and clamps paging.
func (f *SearchFilters) Normalize() {
	if f.Category == "" {
		f.Category = CategoryAll
	}
	if f.SortBy == "" {
		f.SortBy = SortRelevance
	}
	if f.SortDirection == "" {
		f.SortDirection = SortDesc
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// SourceQuery builds the per-source query. Every source fetches the top
// offset+limit candidates from offset zero so that the merged list can be
// windowed after the global sort.
func (f *SearchFilters) SourceQuery() SourceQuery {
	return SourceQuery{
		Text:      f.Query,
		Limit:     f.Offset + f.Limit,
		Sort:      f.SortBy,
		Direction: f.SortDirection,
		Rating:    f.Rating,
		Dates:     f.DateRange,
		Genres:    f.Genres,
		Platforms: f.Platforms,
		Statuses:  f.Statuses,
	}
}

// ResultType tags a SearchResult with its source.
type ResultType string

const (
	ResultGame  ResultType = "game"
	ResultUser  ResultType = "user"
	ResultEntry ResultType = "entry"
)

// SearchResult is one ranked hit. The Sort* fields carry typed sort keys
// and are not serialised.
type SearchResult struct {
	Type           ResultType     `json:"type"`
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	RelevanceScore float64        `json:"relevanceScore"`

	SortDate       time.Time `json:"-"`
	SortRating     float64   `json:"-"`
	SortPopularity int       `json:"-"`
}

// FacetBucket is one value of a facet dimension.
type FacetBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Facets holds per-dimension counts over the game candidate set.
type Facets struct {
	Genres    []FacetBucket `json:"genres"`
	Platforms []FacetBucket `json:"platforms"`
	Statuses  []FacetBucket `json:"statuses"`
}

// EmptyFacets returns facets with non-nil empty buckets.
func EmptyFacets() Facets {
	return Facets{
		Genres:    []FacetBucket{},
		Platforms: []FacetBucket{},
		Statuses:  []FacetBucket{},
	}
}

// SearchResponse is the result of a federated search.
type SearchResponse struct {
	Error       string         `json:"error,omitempty"`
	Results     []SearchResult `json:"results"`
	TotalCount  int            `json:"totalCount"`
	Facets      Facets         `json:"facets"`
	Suggestions []string       `json:"suggestions"`
}

// EmptySearchResponse is the well-shaped body returned on failure.
func EmptySearchResponse(errMsg string) *SearchResponse {
	return &SearchResponse{
		Error:       errMsg,
		Results:     []SearchResult{},
		Facets:      EmptyFacets(),
		Suggestions: []string{},
	}
}

// SuggestionType tags an autocomplete entry.
type SuggestionType string

const (
	SuggestionGame    SuggestionType = "game"
	SuggestionUser    SuggestionType = "user"
	SuggestionPopular SuggestionType = "suggestion"
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text     string         `json:"text"`
	Type     SuggestionType `json:"type"`
	Metadata map[string]any `json:"metadata"`
}
