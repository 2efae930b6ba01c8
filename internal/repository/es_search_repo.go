package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/pkg/log"
)

// Index documents are flat projections of the application tables. Text
// fields carry a ".keyword" sub-field used for contains matching, id is a
// keyword, and genres, platforms and statuses are keyword arrays on games.

type esSearchRepository struct {
	client       *elasticsearch.Client
	indexGames   string
	indexUsers   string
	indexEntries string
}

// NewESSearchRepository creates a new Elasticsearch-based search repository.
func NewESSearchRepository(client *elasticsearch.Client, indexGames, indexUsers, indexEntries string) SearchRepository {
	return &esSearchRepository{
		client:       client,
		indexGames:   indexGames,
		indexUsers:   indexUsers,
		indexEntries: indexEntries,
	}
}

func (r *esSearchRepository) SearchGames(ctx context.Context, q domain.SourceQuery) ([]domain.GameRecord, int, error) {
	filters := gameFilters(q)
	if q.Text != "" {
		filters = append(filters, containsAny(q.Text, "title", "description", "developer", "publisher"))
	}
	query := boolQuery(filters, nil, nil)

	if rankedInGo(q) {
		games, total, err := ranked(ctx, r, r.indexGames, query, q, []string{"id", "title", "description"},
			func(g *domain.GameRecord) sortKey { return sortKey{ID: g.ID, Title: g.Title, Secondary: g.Description} })
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search games: %w", err)
		}
		return games, total, nil
	}

	var sort []any
	switch q.Sort {
	case domain.SortDate:
		sort = []any{fieldSort("release_date", q.Direction, missingAsZero(q.Direction))}
	case domain.SortRating:
		sort = []any{fieldSort("metacritic_score", q.Direction, missingAsZero(q.Direction))}
	case domain.SortPopularity:
		sort = []any{fieldSort("popularity", q.Direction, missingAsZero(q.Direction))}
	}

	result, err := r.search(ctx, r.indexGames, searchBody(query, sort, q.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search games: %w", err)
	}
	return decodeHits[domain.GameRecord](ctx, r.indexGames, result), result.Hits.Total.Value, nil
}

func (r *esSearchRepository) SearchUsers(ctx context.Context, q domain.SourceQuery) ([]domain.UserRecord, int, error) {
	filters := dateFilters("created_at", q.Dates)
	if q.Text != "" {
		filters = append(filters, containsAny(q.Text, "username", "display_name", "bio"))
	}
	query := boolQuery(filters, []any{term("is_banned", true)}, nil)

	if rankedInGo(q) {
		users, total, err := ranked(ctx, r, r.indexUsers, query, q, []string{"id", "username", "display_name", "bio"},
			func(u *domain.UserRecord) sortKey { return sortKey{ID: u.ID, Title: u.Name(), Secondary: u.Bio} })
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search users: %w", err)
		}
		return users, total, nil
	}

	// Users carry no date or rating; they all tie there and fall back to id.
	var sort []any
	if q.Sort == domain.SortPopularity {
		sort = []any{fieldSort("followers", q.Direction, missingAsZero(q.Direction))}
	}

	result, err := r.search(ctx, r.indexUsers, searchBody(query, sort, q.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return decodeHits[domain.UserRecord](ctx, r.indexUsers, result), result.Hits.Total.Value, nil
}

func (r *esSearchRepository) SearchEntries(ctx context.Context, q domain.SourceQuery) ([]domain.EntryRecord, int, error) {
	filters := append([]any{term("is_public", true)}, dateFilters("created_at", q.Dates)...)
	if q.Text != "" {
		filters = append(filters, containsAny(q.Text, "title", "content"))
	}
	query := boolQuery(filters, []any{term("author_banned", true)}, nil)

	if rankedInGo(q) {
		entries, total, err := ranked(ctx, r, r.indexEntries, query, q, []string{"id", "title", "content"},
			func(e *domain.EntryRecord) sortKey { return sortKey{ID: e.ID, Title: e.Title, Secondary: e.Content} })
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search entries: %w", err)
		}
		return entries, total, nil
	}

	var sort []any
	switch q.Sort {
	case domain.SortDate:
		sort = []any{fieldSort("created_at", q.Direction, missingAsZero(q.Direction))}
	case domain.SortPopularity:
		sort = []any{fieldSort("likes_count", q.Direction, missingAsZero(q.Direction))}
	}

	result, err := r.search(ctx, r.indexEntries, searchBody(query, sort, q.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search entries: %w", err)
	}
	return decodeHits[domain.EntryRecord](ctx, r.indexEntries, result), result.Hits.Total.Value, nil
}

func (r *esSearchRepository) Facets(ctx context.Context, q domain.SourceQuery) (*domain.Facets, error) {
	filters := gameFilters(q)
	if q.Text != "" {
		filters = append(filters, containsAny(q.Text, "title", "description", "developer", "publisher"))
	}

	body := searchBody(boolQuery(filters, nil, nil), nil, 0)
	body["aggs"] = map[string]any{
		"genres":    map[string]any{"terms": map[string]any{"field": "genres", "size": 100}},
		"platforms": map[string]any{"terms": map[string]any{"field": "platforms", "size": 100}},
		"statuses":  map[string]any{"terms": map[string]any{"field": "statuses", "size": 20}},
	}

	result, err := r.search(ctx, r.indexGames, body)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate facets: %w", err)
	}

	facets := domain.EmptyFacets()
	for _, b := range result.Aggregations["genres"].Buckets {
		facets.Genres = append(facets.Genres, domain.FacetBucket{Name: b.Key, Count: b.DocCount})
	}
	for _, b := range result.Aggregations["platforms"].Buckets {
		facets.Platforms = append(facets.Platforms, domain.FacetBucket{Name: b.Key, Count: b.DocCount})
	}
	for _, b := range result.Aggregations["statuses"].Buckets {
		facets.Statuses = append(facets.Statuses, domain.FacetBucket{
			Name:  domain.PlayStatus(b.Key).Label(),
			Count: b.DocCount,
		})
	}
	facets.Genres = sortBuckets(facets.Genres)
	facets.Platforms = sortBuckets(facets.Platforms)
	facets.Statuses = sortBuckets(facets.Statuses)

	return &facets, nil
}

func (r *esSearchRepository) MatchGameTitles(ctx context.Context, text string, limit int) ([]domain.GameRecord, error) {
	query := boolQuery([]any{containsAny(text, "title")}, nil, []any{titleTiers(text, "title")})
	sort := []any{fieldSort("_score", domain.SortDesc, "")}

	result, err := r.search(ctx, r.indexGames, searchBody(query, sort, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to match game titles: %w", err)
	}
	return decodeHits[domain.GameRecord](ctx, r.indexGames, result), nil
}

func (r *esSearchRepository) MatchUserNames(ctx context.Context, text string, limit int) ([]domain.UserRecord, error) {
	// The tiers score the name a user is shown under: the display name, or
	// the username when the display name is empty.
	should := []any{
		boolQuery([]any{hasText("display_name")}, nil, []any{titleTiers(text, "display_name")}),
		boolQuery(nil, []any{hasText("display_name")}, []any{titleTiers(text, "username")}),
	}
	query := boolQuery([]any{containsAny(text, "username", "display_name")}, []any{term("is_banned", true)}, should)
	sort := []any{fieldSort("_score", domain.SortDesc, "")}

	result, err := r.search(ctx, r.indexUsers, searchBody(query, sort, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to match user names: %w", err)
	}
	return decodeHits[domain.UserRecord](ctx, r.indexUsers, result), nil
}

// scanPageSize is how many documents one search_after page of a key scan
// reads.
const scanPageSize = 1000

// ranked reads the sort keys of every document matching query, orders them
// with rankKeys and loads the first q.Limit documents in that order. The
// count is the number of documents scanned.
func ranked[T any](ctx context.Context, r *esSearchRepository, index string, query map[string]any, q domain.SourceQuery, fields []string, key func(*T) sortKey) ([]T, int, error) {
	docs, err := scan[T](ctx, r, index, query, fields)
	if err != nil {
		return nil, 0, err
	}

	keys := make([]sortKey, len(docs))
	for i := range docs {
		keys[i] = key(&docs[i])
	}
	ids := rankKeys(keys, q)
	if len(ids) == 0 {
		return []T{}, len(docs), nil
	}

	byID := boolQuery([]any{map[string]any{"terms": map[string]any{"id": ids}}}, nil, nil)
	result, err := r.search(ctx, index, map[string]any{"size": len(ids), "query": byID})
	if err != nil {
		return nil, 0, err
	}
	loaded := decodeHits[T](ctx, index, result)
	return inOrder(loaded, ids, func(doc *T) string { return key(doc).ID }), len(docs), nil
}

// scan pages through every document matching query in id order with
// search_after, reading only fields.
func scan[T any](ctx context.Context, r *esSearchRepository, index string, query map[string]any, fields []string) ([]T, error) {
	var (
		docs  []T
		after []any
	)
	for {
		body := map[string]any{
			"size":    scanPageSize,
			"query":   query,
			"_source": fields,
			"sort":    []any{fieldSort("id", domain.SortAsc, "")},
		}
		if after != nil {
			body["search_after"] = after
		}

		result, err := r.search(ctx, index, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, decodeHits[T](ctx, index, result)...)

		hits := result.Hits.Hits
		if len(hits) < scanPageSize {
			return docs, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

func (r *esSearchRepository) search(ctx context.Context, index string, body map[string]any) (*esResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(index),
		r.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result esResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// decodeHits unmarshals the source of each hit. A hit that does not decode
// is logged and skipped.
func decodeHits[T any](ctx context.Context, index string, result *esResponse) []T {
	docs := make([]T, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var doc T
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldIndex, index).Str("doc_id", hit.ID).Msg("skipping undecodable search hit")
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// boolQuery wraps the clauses in a bool query. Filters do not score; should
// clauses only add to the score.
func boolQuery(filter, mustNot, should []any) map[string]any {
	b := map[string]any{}
	if len(filter) > 0 {
		b["filter"] = filter
	}
	if len(mustNot) > 0 {
		b["must_not"] = mustNot
	}
	if len(should) > 0 {
		b["should"] = should
		b["minimum_should_match"] = 0
	}
	return map[string]any{"bool": b}
}

// searchBody assembles a search request. Every sort ends with id ascending.
func searchBody(query map[string]any, sort []any, size int) map[string]any {
	body := map[string]any{
		"size":             size,
		"track_total_hits": true,
		"query":            query,
	}
	if size > 0 {
		body["sort"] = append(sort, fieldSort("id", domain.SortAsc, ""))
	}
	return body
}

// titleTiers scores exact, prefix and contains matches on field at
// 100/80/60, taking the best.
func titleTiers(text, field string) map[string]any {
	kw := field + ".keyword"
	return map[string]any{"dis_max": map[string]any{"queries": []any{
		constantScore(map[string]any{"term": map[string]any{kw: map[string]any{"value": text, "case_insensitive": true}}}, 100),
		constantScore(map[string]any{"prefix": map[string]any{kw: map[string]any{"value": text, "case_insensitive": true}}}, 80),
		constantScore(wildcard(kw, text), 60),
	}}}
}

// hasText matches documents where field holds a non-empty value.
func hasText(field string) map[string]any {
	return map[string]any{"wildcard": map[string]any{field + ".keyword": map[string]any{"value": "?*"}}}
}

func gameFilters(q domain.SourceQuery) []any {
	filters := dateFilters("release_date", q.Dates)

	min, max := q.Rating.ScoreBounds()
	if min != nil || max != nil {
		bounds := map[string]any{}
		if min != nil {
			bounds["gte"] = *min
		}
		if max != nil {
			bounds["lte"] = *max
		}
		filters = append(filters, map[string]any{"range": map[string]any{"metacritic_score": bounds}})
	}

	if len(q.Genres) > 0 {
		filters = append(filters, anyTerm("genres", q.Genres))
	}
	if len(q.Platforms) > 0 {
		filters = append(filters, anyTerm("platforms", q.Platforms))
	}
	if len(q.Statuses) > 0 {
		values := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			values[i] = string(s)
		}
		filters = append(filters, map[string]any{"terms": map[string]any{"statuses": values}})
	}
	return filters
}

func dateFilters(field string, d domain.DateRange) []any {
	if d.IsZero() {
		return nil
	}
	bounds := map[string]any{}
	if d.Start != nil {
		bounds["gte"] = d.Start
	}
	if d.End != nil {
		bounds["lte"] = d.End
	}
	return []any{map[string]any{"range": map[string]any{field: bounds}}}
}

func containsAny(text string, fields ...string) map[string]any {
	should := make([]any, 0, len(fields))
	for _, f := range fields {
		should = append(should, wildcard(f+".keyword", text))
	}
	return map[string]any{"bool": map[string]any{"should": should, "minimum_should_match": 1}}
}

// anyTerm matches any of values case-insensitively.
func anyTerm(field string, values []string) map[string]any {
	should := make([]any, 0, len(values))
	for _, v := range values {
		should = append(should, map[string]any{"term": map[string]any{field: map[string]any{"value": v, "case_insensitive": true}}})
	}
	return map[string]any{"bool": map[string]any{"should": should, "minimum_should_match": 1}}
}

func wildcard(field, text string) map[string]any {
	return map[string]any{"wildcard": map[string]any{field: map[string]any{
		"value":            "*" + escapeWildcard(text) + "*",
		"case_insensitive": true,
	}}}
}

func constantScore(filter map[string]any, boost float64) map[string]any {
	return map[string]any{"constant_score": map[string]any{"filter": filter, "boost": boost}}
}

func term(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

func fieldSort(field string, dir domain.SortDirection, missing string) map[string]any {
	opts := map[string]any{"order": string(dir)}
	if missing != "" {
		opts["missing"] = missing
	}
	return map[string]any{field: opts}
}

// missingAsZero places documents without the field where a zero value
// would sort.
func missingAsZero(dir domain.SortDirection) string {
	if dir == domain.SortDesc {
		return "_last"
	}
	return "_first"
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}

// esResponse is the generic Elasticsearch search response structure.
type esResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
			Sort   []any           `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key      string `json:"key"`
			DocCount int    `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}
