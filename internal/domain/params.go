package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// SearchParams is the raw query string of GET /api/search. Enumerations are
// validated strictly through the binding tags; numbers and dates are parsed
// leniently by Filters.
type SearchParams struct {
	Query         string `form:"q"`
	Category      string `form:"category" binding:"omitempty,oneof=all games users entries"`
	Genres        string `form:"genres"`
	Platforms     string `form:"platforms"`
	Status        string `form:"status" binding:"omitempty,playstatus"`
	SortBy        string `form:"sortBy" binding:"omitempty,oneof=relevance title date rating popularity"`
	SortDirection string `form:"sortDirection" binding:"omitempty,oneof=asc desc"`
	Limit         string `form:"limit"`
	Offset        string `form:"offset"`
	MinRating     string `form:"minRating"`
	MaxRating     string `form:"maxRating"`
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
}

// Filters converts the params into normalised SearchFilters. A malformed
// numeric or date value is treated as absent.
func (p *SearchParams) Filters() SearchFilters {
	f := SearchFilters{
		Query:         p.Query,
		Category:      Category(p.Category),
		Genres:        SplitList(p.Genres),
		Platforms:     SplitList(p.Platforms),
		SortBy:        SortField(p.SortBy),
		SortDirection: SortDirection(p.SortDirection),
		Limit:         ParseInt(p.Limit, DefaultLimit),
		Offset:        ParseInt(p.Offset, 0),
		Rating: RatingRange{
			Min: ParseFloat(p.MinRating),
			Max: ParseFloat(p.MaxRating),
		},
		DateRange: DateRange{
			Start: ParseDate(p.StartDate),
			End:   ParseDate(p.EndDate),
		},
	}
	for _, s := range SplitList(p.Status) {
		if st, ok := ParsePlayStatus(s); ok {
			f.Statuses = append(f.Statuses, st)
		}
	}
	f.Normalize()
	return f
}

// SplitList splits a comma-separated list, dropping blank members.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseInt returns def when s is empty or not an integer.
func ParseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// ParseFloat returns nil when s is empty, not a number, or not finite.
func ParseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseDate accepts any layout dateparse understands, in UTC.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
