package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/pkg/database"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func floatp(f float64) *float64 {
	return &f
}
func timep(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openTestDB(t)
	seed(t, db)
	return db
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     "file::memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	joined := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []any{
		&domain.GameModel{ID: "g1", Title: "Hades", Slug: "hades", Description: strp("A rogue-like dungeon crawler"),
			Developer: strp("Supergiant"), CoverImage: strp("covers/hades.png"), ReleaseDate: timep(2020, 9, 17), MetacriticScore: intp(93)},
		&domain.GameModel{ID: "g2", Title: "Hades II", Slug: "hades-ii", Description: strp("Sequel to Hades"),
			Developer: strp("Supergiant"), ReleaseDate: timep(2024, 5, 6)},
		&domain.GameModel{ID: "g3", Title: "The Legend of Zelda: Breath of the Wild", Slug: "botw",
			Description: strp("Open air adventure"), Developer: strp("Nintendo"), ReleaseDate: timep(2017, 3, 3), MetacriticScore: intp(97)},
		&domain.GameModel{ID: "g4", Title: "100% Orange Juice", Slug: "oj"},

		&domain.GenreModel{ID: "ge1", Name: "Action", Slug: "action"},
		&domain.GenreModel{ID: "ge2", Name: "Roguelike", Slug: "roguelike"},
		&domain.GenreModel{ID: "ge3", Name: "Adventure", Slug: "adventure"},
		&domain.GameGenreModel{GameID: "g1", GenreID: "ge1"},
		&domain.GameGenreModel{GameID: "g1", GenreID: "ge2"},
		&domain.GameGenreModel{GameID: "g2", GenreID: "ge1"},
		&domain.GameGenreModel{GameID: "g3", GenreID: "ge3"},

		&domain.PlatformModel{ID: "p1", Name: "PC", Slug: "pc"},
		&domain.PlatformModel{ID: "p2", Name: "Switch", Slug: "switch"},
		&domain.GamePlatformModel{GameID: "g1", PlatformID: "p1"},
		&domain.GamePlatformModel{GameID: "g1", PlatformID: "p2"},
		&domain.GamePlatformModel{GameID: "g2", PlatformID: "p1"},
		&domain.GamePlatformModel{GameID: "g3", PlatformID: "p2"},

		&domain.UserModel{ID: "u1", Username: "alice", DisplayName: strp("Alice"), Bio: strp("I love hades"), IsVerified: true, CreatedAt: joined},
		&domain.UserModel{ID: "u2", Username: "bob", Bio: strp("zelda fan"), CreatedAt: joined},
		&domain.UserModel{ID: "u3", Username: "mallory", Bio: strp("hades"), IsBanned: true, CreatedAt: joined},
		&domain.UserStatsModel{UserID: "u1", GamesCompleted: 3, GamesPlaying: 1},

		&domain.FollowModel{ID: "f1", FollowerID: "u2", FollowingID: "u1", FollowType: "follow"},
		&domain.FollowModel{ID: "f2", FollowerID: "u3", FollowingID: "u1", FollowType: "follow"},
		&domain.FollowModel{ID: "f3", FollowerID: "u1", FollowingID: "u2", FollowType: "mute"},

		&domain.GameEntryModel{ID: "l1", UserID: "u1", GameID: "g1", Status: domain.StatusPlaying},
		&domain.GameEntryModel{ID: "l2", UserID: "u2", GameID: "g1", Status: domain.StatusCompleted},
		&domain.GameEntryModel{ID: "l3", UserID: "u1", GameID: "g2", Status: domain.StatusWishlist},

		&domain.CodexEntryModel{ID: "e1", UserID: "u1", GameID: "g1", Title: "Hades boss guide",
			Content: "# Guide\n\nUse the **shield**.", EntryType: "guide", IsPublic: true, LikesCount: 5},
		&domain.CodexEntryModel{ID: "e2", UserID: "u2", GameID: "g3", Title: "Shrine notes",
			Content: "hades reference", EntryType: "note", IsPublic: false},
		&domain.CodexEntryModel{ID: "e3", UserID: "u3", GameID: "g1", Title: "Hades tips",
			Content: "spam", EntryType: "tip", IsPublic: true},
		&domain.CodexEntryModel{ID: "e4", UserID: "u2", GameID: "g3", Title: "Korok seeds",
			Content: "Where to find them", EntryType: "note", IsPublic: true, LikesCount: 2},
	}
	for _, rec := range records {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("seed %T: %v", rec, err)
		}
	}
}

func gameIDs(games []domain.GameRecord) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGormSearchGames(t *testing.T) {
	repo := NewGormSearchRepository(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		q         domain.SourceQuery
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "text relevance ties break on id",
			q:         domain.SourceQuery{Text: "hades", Limit: 10, Sort: domain.SortRelevance, Direction: domain.SortDesc},
			wantIDs:   []string{"g1", "g2"},
			wantTotal: 2,
		},
		{
			name:      "matches developer",
			q:         domain.SourceQuery{Text: "NINTENDO", Limit: 10, Sort: domain.SortRelevance, Direction: domain.SortDesc},
			wantIDs:   []string{"g3"},
			wantTotal: 1,
		},
		{
			name:      "percent is literal",
			q:         domain.SourceQuery{Text: "%", Limit: 10, Sort: domain.SortRelevance, Direction: domain.SortDesc},
			wantIDs:   []string{"g4"},
			wantTotal: 1,
		},
		{
			name:      "underscore is literal",
			q:         domain.SourceQuery{Text: "_", Limit: 10, Sort: domain.SortRelevance, Direction: domain.SortDesc},
			wantIDs:   []string{},
			wantTotal: 0,
		},
		{
			name:      "limit keeps full total",
			q:         domain.SourceQuery{Limit: 1, Sort: domain.SortTitle, Direction: domain.SortAsc},
			wantIDs:   []string{"g4"},
			wantTotal: 4,
		},
		{
			name:      "popularity desc",
			q:         domain.SourceQuery{Limit: 10, Sort: domain.SortPopularity, Direction: domain.SortDesc},
			wantIDs:   []string{"g1", "g2", "g3", "g4"},
			wantTotal: 4,
		},
		{
			name:      "rating desc treats missing as zero",
			q:         domain.SourceQuery{Limit: 10, Sort: domain.SortRating, Direction: domain.SortDesc},
			wantIDs:   []string{"g3", "g1", "g2", "g4"},
			wantTotal: 4,
		},
		{
			name:      "date asc puts missing first",
			q:         domain.SourceQuery{Limit: 10, Sort: domain.SortDate, Direction: domain.SortAsc},
			wantIDs:   []string{"g4", "g3", "g1", "g2"},
			wantTotal: 4,
		},
		{
			name:      "genre by name or slug",
			q:         domain.SourceQuery{Limit: 10, Genres: []string{"ACTION"}, Direction: domain.SortDesc},
			wantIDs:   []string{"g1", "g2"},
			wantTotal: 2,
		},
		{
			name:      "platform",
			q:         domain.SourceQuery{Limit: 10, Platforms: []string{"switch"}, Direction: domain.SortDesc},
			wantIDs:   []string{"g1", "g3"},
			wantTotal: 2,
		},
		{
			name:      "status",
			q:         domain.SourceQuery{Limit: 10, Statuses: []domain.PlayStatus{domain.StatusCompleted}, Direction: domain.SortDesc},
			wantIDs:   []string{"g1"},
			wantTotal: 1,
		},
		{
			name:      "min rating only",
			q:         domain.SourceQuery{Limit: 10, Rating: domain.RatingRange{Min: floatp(9.5)}, Direction: domain.SortDesc},
			wantIDs:   []string{"g3"},
			wantTotal: 1,
		},
		{
			name:      "release date range",
			q:         domain.SourceQuery{Limit: 10, Dates: domain.DateRange{Start: timep(2019, 1, 1), End: timep(2021, 1, 1)}, Direction: domain.SortDesc},
			wantIDs:   []string{"g1"},
			wantTotal: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games, total, err := repo.SearchGames(ctx, tt.q)
			if err != nil {
				t.Fatalf("SearchGames: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if got := gameIDs(games); !sameIDs(got, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestGormRankedOrders(t *testing.T) {
	db := openTestDB(t)
	for _, g := range []*domain.GameModel{
		{ID: "g1", Title: "Apple", Slug: "apple-1"},
		{ID: "g2", Title: "apple", Slug: "apple-2"},
		{ID: "g3", Title: "Zelda", Slug: "zelda"},
		{ID: "g4", Title: "Éclair", Slug: "eclair"},
		{ID: "g5", Title: "Dark Souls Remastered Collection With Every DLC Included Edition", Slug: "ds-long"},
		{ID: "g6", Title: "Dark Souls", Slug: "ds"},
	} {
		if err := db.Create(g).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	repo := NewGormSearchRepository(db)
	ctx := context.Background()

	tests := []struct {
		name      string
		q         domain.SourceQuery
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "title asc collates",
			q:         domain.SourceQuery{Limit: 10, Sort: domain.SortTitle, Direction: domain.SortAsc},
			wantIDs:   []string{"g2", "g1", "g6", "g5", "g4", "g3"},
			wantTotal: 6,
		},
		{
			name:      "title asc prefix",
			q:         domain.SourceQuery{Limit: 3, Sort: domain.SortTitle, Direction: domain.SortAsc},
			wantIDs:   []string{"g2", "g1", "g6"},
			wantTotal: 6,
		},
		{
			name:      "title desc prefix",
			q:         domain.SourceQuery{Limit: 2, Sort: domain.SortTitle, Direction: domain.SortDesc},
			wantIDs:   []string{"g3", "g4"},
			wantTotal: 6,
		},
		{
			name:      "length bonus decides between prefix matches",
			q:         domain.SourceQuery{Text: "dark", Limit: 1, Sort: domain.SortRelevance, Direction: domain.SortDesc},
			wantIDs:   []string{"g6"},
			wantTotal: 2,
		},
		{
			name:      "relevance asc",
			q:         domain.SourceQuery{Text: "dark", Limit: 2, Sort: domain.SortRelevance, Direction: domain.SortAsc},
			wantIDs:   []string{"g5", "g6"},
			wantTotal: 2,
		},
		{
			name:      "accented text folds case",
			q:         domain.SourceQuery{Text: "ÉCLA", Limit: 10, Sort: domain.SortRelevance, Direction: domain.SortDesc},
			wantIDs:   []string{"g4"},
			wantTotal: 1,
		},
		{
			name:      "zero limit still counts",
			q:         domain.SourceQuery{Text: "a", Limit: 0, Sort: domain.SortTitle, Direction: domain.SortAsc},
			wantIDs:   []string{},
			wantTotal: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games, total, err := repo.SearchGames(ctx, tt.q)
			if err != nil {
				t.Fatalf("SearchGames: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if got := gameIDs(games); !sameIDs(got, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
		})
	}

	games, err := repo.MatchGameTitles(ctx, "écl", 5)
	if err != nil {
		t.Fatalf("MatchGameTitles: %v", err)
	}
	if got := gameIDs(games); !sameIDs(got, []string{"g4"}) {
		t.Errorf("autocomplete games = %v, want [g4]", got)
	}
}

func TestGormSearchGamesRecordFields(t *testing.T) {
	repo := NewGormSearchRepository(newTestDB(t))

	games, _, err := repo.SearchGames(context.Background(), domain.SourceQuery{Text: "hades", Limit: 1, Direction: domain.SortDesc})
	if err != nil {
		t.Fatalf("SearchGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	g := games[0]
	if g.Popularity != 2 {
		t.Errorf("popularity = %d, want 2", g.Popularity)
	}
	if g.CriticScore == nil || *g.CriticScore != 93 {
		t.Errorf("critic score = %v, want 93", g.CriticScore)
	}
	if g.CoverImage != "covers/hades.png" || g.Developer != "Supergiant" || g.Publisher != "" {
		t.Errorf("unexpected record %+v", g)
	}
}

func TestGormSearchUsers(t *testing.T) {
	repo := NewGormSearchRepository(newTestDB(t))
	ctx := context.Background()

	users, total, err := repo.SearchUsers(ctx, domain.SourceQuery{Text: "hades", Limit: 10, Direction: domain.SortDesc})
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Fatalf("got %d users (total %d), want banned user excluded", len(users), total)
	}
	alice := users[0]
	if alice.ID != "u1" || alice.Name() != "Alice" || !alice.IsVerified {
		t.Errorf("unexpected user %+v", alice)
	}
	if alice.Followers != 2 {
		t.Errorf("followers = %d, want 2", alice.Followers)
	}
	if alice.Library[domain.StatusCompleted] != 3 || alice.Library[domain.StatusPlaying] != 1 {
		t.Errorf("library = %v", alice.Library)
	}
	if _, ok := alice.Library[domain.StatusOnHold]; ok {
		t.Error("on_hold has no counter column and should not appear")
	}

	users, total, err = repo.SearchUsers(ctx, domain.SourceQuery{Limit: 10, Sort: domain.SortTitle, Direction: domain.SortAsc})
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if total != 2 || len(users) != 2 || users[0].ID != "u1" || users[1].ID != "u2" {
		t.Errorf("unexpected users %+v (total %d)", users, total)
	}
	if users[1].Name() != "bob" || users[1].Library != nil {
		t.Errorf("bob = %+v", users[1])
	}
}

func TestGormSearchEntries(t *testing.T) {
	repo := NewGormSearchRepository(newTestDB(t))
	ctx := context.Background()

	entries, total, err := repo.SearchEntries(ctx, domain.SourceQuery{Text: "hades", Limit: 10, Direction: domain.SortDesc})
	if err != nil {
		t.Fatalf("SearchEntries: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("got %d entries (total %d), want private and banned excluded", len(entries), total)
	}
	e := entries[0]
	if e.ID != "e1" || e.GameTitle != "Hades" || e.GameCover != "covers/hades.png" || e.Author() != "Alice" || e.Likes != 5 {
		t.Errorf("unexpected entry %+v", e)
	}

	entries, total, err = repo.SearchEntries(ctx, domain.SourceQuery{Limit: 10, Sort: domain.SortPopularity, Direction: domain.SortDesc})
	if err != nil {
		t.Fatalf("SearchEntries: %v", err)
	}
	if total != 2 || len(entries) != 2 || entries[0].ID != "e1" || entries[1].ID != "e4" {
		t.Errorf("unexpected entries %+v (total %d)", entries, total)
	}
	if entries[1].Author() != "bob" {
		t.Errorf("author = %q, want username fallback", entries[1].Author())
	}
}

func TestGormFacets(t *testing.T) {
	repo := NewGormSearchRepository(newTestDB(t))
	ctx := context.Background()

	facets, err := repo.Facets(ctx, domain.SourceQuery{})
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}

	wantGenres := []domain.FacetBucket{{Name: "Action", Count: 2}, {Name: "Adventure", Count: 1}, {Name: "Roguelike", Count: 1}}
	wantPlatforms := []domain.FacetBucket{{Name: "PC", Count: 2}, {Name: "Switch", Count: 2}}
	wantStatuses := []domain.FacetBucket{{Name: "Completed", Count: 1}, {Name: "Playing", Count: 1}, {Name: "Wishlist", Count: 1}}

	check := func(name string, got, want []domain.FacetBucket) {
		t.Helper()
		if len(got) != len(want) {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s = %v, want %v", name, got, want)
				return
			}
		}
	}
	check("genres", facets.Genres, wantGenres)
	check("platforms", facets.Platforms, wantPlatforms)
	check("statuses", facets.Statuses, wantStatuses)

	facets, err = repo.Facets(ctx, domain.SourceQuery{Text: "zelda"})
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}
	check("genres", facets.Genres, []domain.FacetBucket{{Name: "Adventure", Count: 1}})
	check("platforms", facets.Platforms, []domain.FacetBucket{{Name: "Switch", Count: 1}})
	if facets.Statuses == nil || len(facets.Statuses) != 0 {
		t.Errorf("statuses = %#v, want empty non-nil", facets.Statuses)
	}
}

func TestGormMatchers(t *testing.T) {
	repo := NewGormSearchRepository(newTestDB(t))
	ctx := context.Background()

	games, err := repo.MatchGameTitles(ctx, "Hades", 5)
	if err != nil {
		t.Fatalf("MatchGameTitles: %v", err)
	}
	if got := gameIDs(games); !sameIDs(got, []string{"g1", "g2"}) {
		t.Errorf("games = %v", got)
	}

	games, err = repo.MatchGameTitles(ctx, "e", 1)
	if err != nil {
		t.Fatalf("MatchGameTitles: %v", err)
	}
	if len(games) != 1 {
		t.Errorf("limit not applied: %d games", len(games))
	}

	users, err := repo.MatchUserNames(ctx, "al", 3)
	if err != nil {
		t.Fatalf("MatchUserNames: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Errorf("users = %+v, want only alice", users)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain": "plain",
		"100%":  "100!%",
		"a_b":   "a!_b",
		"wow!":  "wow!!",
		"!%_":   "!!!%!_",
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
