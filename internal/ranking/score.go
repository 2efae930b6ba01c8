// Package ranking scores candidates and orders the merged result list.
package ranking

import (
	"strings"
	"unicode/utf8"
)

const (
	exactTitleScore    = 100
	prefixTitleScore   = 80
	containsTitleScore = 60
	contentMatchScore  = 20
	shortTitleBonus    = 10

	shortTitleRunes = 50
)

// Score computes the relevance of a candidate with the given title and
// secondary text. An empty query scores every candidate 1.
func Score(query, title, secondary string) float64 {
	if query == "" {
		return 1
	}

	q := strings.ToLower(query)
	t := strings.ToLower(title)

	var score float64
	switch {
	case t == q:
		score = exactTitleScore
	case strings.HasPrefix(t, q):
		score = prefixTitleScore
	case strings.Contains(t, q):
		score = containsTitleScore
	}

	if strings.Contains(strings.ToLower(secondary), q) {
		score += contentMatchScore
	}
	if utf8.RuneCountInString(title) < shortTitleRunes {
		score += shortTitleBonus
	}

	return score
}
