package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rovora/search-service/internal/domain"
)

const (
	gameTitleCol  = "games.title"
	userTitleExpr = "COALESCE(NULLIF(users.display_name, ''), users.username)"
	entryTitleCol = "codex_entries.title"

	gamePopularityExpr = "(SELECT COUNT(*) FROM game_entries pe WHERE pe.game_id = games.id)"
	userFollowersExpr  = "(SELECT COUNT(*) FROM follows pf WHERE pf.following_id = users.id AND pf.follow_type = 'follow')"
)

type gormSearchRepository struct {
	db *gorm.DB
}

// NewGormSearchRepository creates a SQL-backed search repository over the
// application tables.
func NewGormSearchRepository(db *gorm.DB) SearchRepository {
	return &gormSearchRepository{db: db}
}

type gameRow struct {
	domain.GameModel `gorm:"embedded"`
	Popularity       int
}

type userRow struct {
	domain.UserModel `gorm:"embedded"`
	Followers        int
}

type entryRow struct {
	ID                string
	Title             string
	Content           string
	EntryType         string
	GameID            string
	UserID            string
	LikesCount        int
	CreatedAt         time.Time
	GameTitle         *string
	GameCover         *string
	AuthorUsername    *string
	AuthorDisplayName *string
}

type facetRow struct {
	Name  string
	Total int
}

// source is one searchable table as fetch sees it.
type source struct {
	table     string
	idCol     string
	columns   string
	titleExpr string
	secondary string
	scope     func(*gorm.DB) *gorm.DB
}

// fetch loads up to q.Limit rows of src best first and counts every match.
// Title and relevance orders are ranked in Go over the keys of all matches;
// numeric keys are ordered by the database with the id tie-break.
func fetch[T any](ctx context.Context, db *gorm.DB, src source, q domain.SourceQuery, keys []clause.Expr, id func(*T) string) ([]T, int, error) {
	load := func() *gorm.DB {
		return db.WithContext(ctx).Table(src.table).Select(src.columns).Scopes(src.scope)
	}

	if rankedInGo(q) {
		secondary := "''"
		if q.Sort != domain.SortTitle {
			secondary = "COALESCE(" + src.secondary + ", '')"
		}

		var candidates []sortKey
		err := db.WithContext(ctx).
			Table(src.table).
			Select(fmt.Sprintf("%s AS id, %s AS title, %s AS secondary", src.idCol, src.titleExpr, secondary)).
			Scopes(src.scope).
			Order(src.idCol + " ASC").
			Scan(&candidates).Error
		if err != nil {
			return nil, 0, err
		}

		ids := rankKeys(candidates, q)
		if len(ids) == 0 {
			return []T{}, len(candidates), nil
		}

		var rows []T
		if err := load().Where(src.idCol+" IN ?", ids).Scan(&rows).Error; err != nil {
			return nil, 0, err
		}
		return inOrder(rows, ids, id), len(candidates), nil
	}

	var total int64
	if err := db.WithContext(ctx).Table(src.table).Scopes(src.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || q.Limit <= 0 {
		return []T{}, int(total), nil
	}

	var rows []T
	err := load().
		Clauses(orderBy(keys, q.Direction, src.idCol)).
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, int(total), nil
}

func (r *gormSearchRepository) SearchGames(ctx context.Context, q domain.SourceQuery) ([]domain.GameRecord, int, error) {
	src := source{
		table:     "games",
		idCol:     "games.id",
		columns:   "games.*, " + gamePopularityExpr + " AS popularity",
		titleExpr: gameTitleCol,
		secondary: "games.description",
		scope:     gameScope(q),
	}

	var keys []clause.Expr
	switch q.Sort {
	case domain.SortDate:
		keys = []clause.Expr{
			{SQL: "CASE WHEN games.release_date IS NULL THEN 0 ELSE 1 END"},
			{SQL: "games.release_date"},
		}
	case domain.SortRating:
		keys = []clause.Expr{{SQL: "COALESCE(games.metacritic_score, 0)"}}
	case domain.SortPopularity:
		keys = []clause.Expr{{SQL: gamePopularityExpr}}
	}

	rows, total, err := fetch(ctx, r.db, src, q, keys, func(row *gameRow) string { return row.ID })
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search games: %w", err)
	}

	games := make([]domain.GameRecord, 0, len(rows))
	for i := range rows {
		g := rows[i].ToDomain()
		g.Popularity = rows[i].Popularity
		games = append(games, g)
	}
	return games, total, nil
}

func (r *gormSearchRepository) SearchUsers(ctx context.Context, q domain.SourceQuery) ([]domain.UserRecord, int, error) {
	src := source{
		table:     "users",
		idCol:     "users.id",
		columns:   "users.*, " + userFollowersExpr + " AS followers",
		titleExpr: userTitleExpr,
		secondary: "users.bio",
		scope:     userScope(q),
	}

	// Users carry no date or rating; they all tie there and fall back to id.
	var keys []clause.Expr
	if q.Sort == domain.SortPopularity {
		keys = []clause.Expr{{SQL: userFollowersExpr}}
	}

	rows, total, err := fetch(ctx, r.db, src, q, keys, func(row *userRow) string { return row.ID })
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	if len(rows) == 0 {
		return []domain.UserRecord{}, total, nil
	}

	users := make([]domain.UserRecord, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for i := range rows {
		u := rows[i].ToDomain()
		u.Followers = rows[i].Followers
		users = append(users, u)
		ids = append(ids, u.ID)
	}

	var stats []domain.UserStatsModel
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&stats).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load user stats: %w", err)
	}
	byUser := make(map[string]*domain.UserStatsModel, len(stats))
	for i := range stats {
		byUser[stats[i].UserID] = &stats[i]
	}
	for i := range users {
		if s, ok := byUser[users[i].ID]; ok {
			users[i].Library = s.Library()
		}
	}

	return users, total, nil
}

func (r *gormSearchRepository) SearchEntries(ctx context.Context, q domain.SourceQuery) ([]domain.EntryRecord, int, error) {
	src := source{
		table: "codex_entries",
		idCol: "codex_entries.id",
		columns: strings.Join([]string{
			"codex_entries.id",
			"codex_entries.title",
			"codex_entries.content",
			"codex_entries.entry_type",
			"codex_entries.game_id",
			"codex_entries.user_id",
			"codex_entries.likes_count",
			"codex_entries.created_at",
			"games.title AS game_title",
			"games.cover_image AS game_cover",
			"users.username AS author_username",
			"users.display_name AS author_display_name",
		}, ", "),
		titleExpr: entryTitleCol,
		secondary: "codex_entries.content",
		scope:     entryScope(q),
	}

	var keys []clause.Expr
	switch q.Sort {
	case domain.SortDate:
		keys = []clause.Expr{{SQL: "codex_entries.created_at"}}
	case domain.SortPopularity:
		keys = []clause.Expr{{SQL: "codex_entries.likes_count"}}
	}

	rows, total, err := fetch(ctx, r.db, src, q, keys, func(row *entryRow) string { return row.ID })
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search entries: %w", err)
	}

	entries := make([]domain.EntryRecord, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.EntryRecord{
			ID:                row.ID,
			Title:             row.Title,
			Content:           row.Content,
			EntryType:         row.EntryType,
			GameID:            row.GameID,
			GameTitle:         deref(row.GameTitle),
			GameCover:         deref(row.GameCover),
			UserID:            row.UserID,
			AuthorUsername:    deref(row.AuthorUsername),
			AuthorDisplayName: deref(row.AuthorDisplayName),
			CreatedAt:         row.CreatedAt,
			Likes:             row.LikesCount,
		})
	}
	return entries, total, nil
}

func (r *gormSearchRepository) Facets(ctx context.Context, q domain.SourceQuery) (*domain.Facets, error) {
	scope := gameScope(q)
	facets := domain.EmptyFacets()

	var genres []facetRow
	err := r.db.WithContext(ctx).
		Table("games").
		Select("genres.name AS name, COUNT(DISTINCT games.id) AS total").
		Joins("JOIN game_genres ON game_genres.game_id = games.id").
		Joins("JOIN genres ON genres.id = game_genres.genre_id").
		Scopes(scope).
		Group("genres.name").
		Scan(&genres).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate genres: %w", err)
	}

	var platforms []facetRow
	err = r.db.WithContext(ctx).
		Table("games").
		Select("platforms.name AS name, COUNT(DISTINCT games.id) AS total").
		Joins("JOIN game_platforms ON game_platforms.game_id = games.id").
		Joins("JOIN platforms ON platforms.id = game_platforms.platform_id").
		Scopes(scope).
		Group("platforms.name").
		Scan(&platforms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platforms: %w", err)
	}

	var statuses []facetRow
	err = r.db.WithContext(ctx).
		Table("games").
		Select("game_entries.status AS name, COUNT(DISTINCT games.id) AS total").
		Joins("JOIN game_entries ON game_entries.game_id = games.id").
		Scopes(scope).
		Group("game_entries.status").
		Scan(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statuses: %w", err)
	}

	for _, row := range genres {
		facets.Genres = append(facets.Genres, domain.FacetBucket{Name: row.Name, Count: row.Total})
	}
	for _, row := range platforms {
		facets.Platforms = append(facets.Platforms, domain.FacetBucket{Name: row.Name, Count: row.Total})
	}
	for _, row := range statuses {
		facets.Statuses = append(facets.Statuses, domain.FacetBucket{
			Name:  domain.PlayStatus(row.Name).Label(),
			Count: row.Total,
		})
	}
	facets.Genres = sortBuckets(facets.Genres)
	facets.Platforms = sortBuckets(facets.Platforms)
	facets.Statuses = sortBuckets(facets.Statuses)

	return &facets, nil
}

func (r *gormSearchRepository) MatchGameTitles(ctx context.Context, text string, limit int) ([]domain.GameRecord, error) {
	q := strings.ToLower(text)

	var models []domain.GameModel
	err := r.db.WithContext(ctx).
		Where("LOWER(games.title) LIKE ? ESCAPE '!'", containsPattern(q)).
		Clauses(orderBy([]clause.Expr{titleTier(gameTitleCol, q)}, domain.SortAsc, "games.id")).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to match game titles: %w", err)
	}

	games := make([]domain.GameRecord, 0, len(models))
	for i := range models {
		games = append(games, models[i].ToDomain())
	}
	return games, nil
}

func (r *gormSearchRepository) MatchUserNames(ctx context.Context, text string, limit int) ([]domain.UserRecord, error) {
	q := strings.ToLower(text)
	pattern := containsPattern(q)

	var models []domain.UserModel
	err := r.db.WithContext(ctx).
		Where("users.is_banned = ?", false).
		Where("(LOWER(users.username) LIKE ? ESCAPE '!' OR LOWER(COALESCE(users.display_name, '')) LIKE ? ESCAPE '!')", pattern, pattern).
		Clauses(orderBy([]clause.Expr{titleTier(userTitleExpr, q)}, domain.SortAsc, "users.id")).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to match user names: %w", err)
	}

	users := make([]domain.UserRecord, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToDomain())
	}
	return users, nil
}

func gameScope(q domain.SourceQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Text != "" {
			p := containsPattern(strings.ToLower(q.Text))
			db = db.Where(
				"(LOWER(games.title) LIKE ? ESCAPE '!' OR LOWER(COALESCE(games.description, '')) LIKE ? ESCAPE '!'"+
					" OR LOWER(COALESCE(games.developer, '')) LIKE ? ESCAPE '!' OR LOWER(COALESCE(games.publisher, '')) LIKE ? ESCAPE '!')",
				p, p, p, p,
			)
		}

		min, max := q.Rating.ScoreBounds()
		if min != nil {
			db = db.Where("games.metacritic_score >= ?", *min)
		}
		if max != nil {
			db = db.Where("games.metacritic_score <= ?", *max)
		}

		if q.Dates.Start != nil {
			db = db.Where("games.release_date >= ?", *q.Dates.Start)
		}
		if q.Dates.End != nil {
			db = db.Where("games.release_date <= ?", *q.Dates.End)
		}

		if names := lowerAll(q.Genres); len(names) > 0 {
			db = db.Where(
				"games.id IN (SELECT fgg.game_id FROM game_genres fgg JOIN genres fg ON fg.id = fgg.genre_id"+
					" WHERE LOWER(fg.name) IN ? OR LOWER(fg.slug) IN ?)",
				names, names,
			)
		}
		if names := lowerAll(q.Platforms); len(names) > 0 {
			db = db.Where(
				"games.id IN (SELECT fgp.game_id FROM game_platforms fgp JOIN platforms fp ON fp.id = fgp.platform_id"+
					" WHERE LOWER(fp.name) IN ? OR LOWER(fp.slug) IN ?)",
				names, names,
			)
		}
		if len(q.Statuses) > 0 {
			statuses := make([]string, len(q.Statuses))
			for i, s := range q.Statuses {
				statuses[i] = string(s)
			}
			db = db.Where("games.id IN (SELECT fge.game_id FROM game_entries fge WHERE fge.status IN ?)", statuses)
		}

		return db
	}
}

func userScope(q domain.SourceQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("users.is_banned = ?", false)

		if q.Text != "" {
			p := containsPattern(strings.ToLower(q.Text))
			db = db.Where(
				"(LOWER(users.username) LIKE ? ESCAPE '!' OR LOWER(COALESCE(users.display_name, '')) LIKE ? ESCAPE '!'"+
					" OR LOWER(COALESCE(users.bio, '')) LIKE ? ESCAPE '!')",
				p, p, p,
			)
		}
		if q.Dates.Start != nil {
			db = db.Where("users.created_at >= ?", *q.Dates.Start)
		}
		if q.Dates.End != nil {
			db = db.Where("users.created_at <= ?", *q.Dates.End)
		}
		return db
	}
}

func entryScope(q domain.SourceQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.
			Joins("LEFT JOIN games ON games.id = codex_entries.game_id").
			Joins("LEFT JOIN users ON users.id = codex_entries.user_id").
			Where("codex_entries.is_public = ?", true).
			Where("(users.id IS NULL OR users.is_banned = ?)", false)

		if q.Text != "" {
			p := containsPattern(strings.ToLower(q.Text))
			db = db.Where(
				"(LOWER(codex_entries.title) LIKE ? ESCAPE '!' OR LOWER(codex_entries.content) LIKE ? ESCAPE '!')",
				p, p,
			)
		}
		if q.Dates.Start != nil {
			db = db.Where("codex_entries.created_at >= ?", *q.Dates.Start)
		}
		if q.Dates.End != nil {
			db = db.Where("codex_entries.created_at <= ?", *q.Dates.End)
		}
		return db
	}
}

// titleScore is the exact/prefix/contains component of the relevance score.
func titleScore(title, q string) clause.Expr {
	return clause.Expr{
		SQL: fmt.Sprintf(
			"CASE WHEN LOWER(%[1]s) = ? THEN 100 WHEN LOWER(%[1]s) LIKE ? ESCAPE '!' THEN 80"+
				" WHEN LOWER(%[1]s) LIKE ? ESCAPE '!' THEN 60 ELSE 0 END",
			title,
		),
		Vars: []any{q, escapeLike(q) + "%", containsPattern(q)},
	}
}

// titleTier orders exact, then prefix, then contains matches first.
func titleTier(title, q string) clause.Expr {
	tier := titleScore(title, q)
	return clause.Expr{SQL: "(-" + tier.SQL + ")", Vars: tier.Vars}
}

// orderBy sorts by each key in dir, then by idCol ascending.
func orderBy(keys []clause.Expr, dir domain.SortDirection, idCol string) clause.OrderBy {
	d := "ASC"
	if dir == domain.SortDesc {
		d = "DESC"
	}

	var (
		parts []string
		vars  []any
	)
	for _, k := range keys {
		parts = append(parts, k.SQL+" "+d)
		vars = append(vars, k.Vars...)
	}
	parts = append(parts, idCol+" ASC")

	return clause.OrderBy{Expression: clause.Expr{
		SQL:                strings.Join(parts, ", "),
		Vars:               vars,
		WithoutParentheses: true,
	}}
}

// escapeLike escapes LIKE wildcards with '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
