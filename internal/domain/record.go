package domain

import "time"

// GameRecord is a game as seen by search.
type GameRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Developer   string     `json:"developer"`
	Publisher   string     `json:"publisher"`
	CoverImage  string     `json:"cover_image"`
	ReleaseDate *time.Time `json:"release_date"`
	CriticScore *int       `json:"metacritic_score"` // 0-100
	Popularity  int        `json:"popularity"`       // library entries
}

// UserRecord is a user profile as seen by search.
type UserRecord struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	IsVerified  bool      `json:"is_verified"`
	JoinedAt    time.Time `json:"created_at"`
	Followers   int       `json:"followers"`

	// Library holds per-status game counts when the source keeps them.
	Library map[PlayStatus]int `json:"library,omitempty"`
}

// Name is the display name, falling back to the username.
func (u *UserRecord) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// EntryRecord is a codex entry joined with its game and author.
type EntryRecord struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	EntryType         string    `json:"entry_type"`
	GameID            string    `json:"game_id"`
	GameTitle         string    `json:"game_title"`
	GameCover         string    `json:"game_cover"`
	UserID            string    `json:"user_id"`
	AuthorUsername    string    `json:"author_username"`
	AuthorDisplayName string    `json:"author_display_name"`
	CreatedAt         time.Time `json:"created_at"`
	Likes             int       `json:"likes_count"`
}

// Author is the author's display name, falling back to the username.
func (e *EntryRecord) Author() string {
	if e.AuthorDisplayName != "" {
		return e.AuthorDisplayName
	}
	return e.AuthorUsername
}

// RatingRange bounds the critic rating on a 0-10 scale. Nil bounds are open.
type RatingRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ScoreBounds maps the range onto the stored 0-100 critic score.
func (r RatingRange) ScoreBounds() (min, max *float64) {
	if r.Min != nil {
		v := *r.Min * 10
		min = &v
	}
	if r.Max != nil {
		v := *r.Max * 10
		max = &v
	}
	return min, max
}

// DateRange bounds a timestamp. Nil bounds are open.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (d DateRange) IsZero() bool { return d.Start == nil && d.End == nil }

// SourceQuery is what one data source is asked for. Game-only constraints
// (rating, genres, platforms, statuses) are ignored by the other sources.
type SourceQuery struct {
	Text      string
	Limit     int
	Sort      SortField
	Direction SortDirection
	Rating    RatingRange
	Dates     DateRange
	Genres    []string
	Platforms []string
	Statuses  []PlayStatus
}
