package domain

import "time"

// The models below mirror the application tables search reads. They are
// owned by the main application; AutoMigrate is only used for development
// and test databases.

type GameModel struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)"`
	Title           string     `gorm:"type:varchar(255);not null;index"`
	Slug            string     `gorm:"type:varchar(255);uniqueIndex"`
	Description     *string    `gorm:"type:text"`
	Developer       *string    `gorm:"type:varchar(255)"`
	Publisher       *string    `gorm:"type:varchar(255)"`
	CoverImage      *string    `gorm:"type:varchar(512)"`
	ReleaseDate     *time.Time `gorm:"index"`
	MetacriticScore *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (GameModel) TableName() string { return "games" }

func (m *GameModel) ToDomain() GameRecord {
	return GameRecord{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: deref(m.Description),
		Developer:   deref(m.Developer),
		Publisher:   deref(m.Publisher),
		CoverImage:  deref(m.CoverImage),
		ReleaseDate: m.ReleaseDate,
		CriticScore: m.MetacriticScore,
	}
}

type UserModel struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	Username    string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	DisplayName *string `gorm:"type:varchar(100)"`
	Bio         *string `gorm:"type:text"`
	AvatarURL   *string `gorm:"type:varchar(512)"`
	IsVerified  bool    `gorm:"not null;default:false"`
	IsPrivate   bool    `gorm:"not null;default:false"`
	IsBanned    bool    `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() UserRecord {
	return UserRecord{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: deref(m.DisplayName),
		Bio:         deref(m.Bio),
		AvatarURL:   deref(m.AvatarURL),
		IsVerified:  m.IsVerified,
		JoinedAt:    m.CreatedAt,
	}
}

// UserStatsModel holds denormalised per-status library counters.
type UserStatsModel struct {
	UserID         string `gorm:"primaryKey;type:varchar(36)"`
	GamesCompleted int    `gorm:"not null;default:0"`
	GamesPlaying   int    `gorm:"not null;default:0"`
	GamesBacklog   int    `gorm:"not null;default:0"`
	GamesDropped   int    `gorm:"not null;default:0"`
	GamesWishlist  int    `gorm:"not null;default:0"`
}

func (UserStatsModel) TableName() string { return "user_stats" }

// Count returns the counter kept for status. Statuses without a counter
// column report false.
func (m *UserStatsModel) Count(status PlayStatus) (int, bool) {
	switch status {
	case StatusCompleted:
		return m.GamesCompleted, true
	case StatusPlaying:
		return m.GamesPlaying, true
	case StatusBacklog:
		return m.GamesBacklog, true
	case StatusDropped:
		return m.GamesDropped, true
	case StatusWishlist:
		return m.GamesWishlist, true
	default:
		return 0, false
	}
}

// Library maps every countered status to its value.
func (m *UserStatsModel) Library() map[PlayStatus]int {
	out := make(map[PlayStatus]int, 5)
	for _, st := range PlayStatuses() {
		if n, ok := m.Count(st); ok {
			out[st] = n
		}
	}
	return out
}

type CodexEntryModel struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	UserID     string `gorm:"type:varchar(36);not null;index"`
	GameID     string `gorm:"type:varchar(36);not null;index"`
	Title      string `gorm:"type:varchar(255);not null"`
	Content    string `gorm:"type:text;not null"`
	EntryType  string `gorm:"type:varchar(32);not null"`
	IsPublic   bool   `gorm:"not null"`
	LikesCount int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CodexEntryModel) TableName() string { return "codex_entries" }

type GenreModel struct {
	ID   string `gorm:"primaryKey;type:varchar(36)"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex"`
}

func (GenreModel) TableName() string { return "genres" }

type GameGenreModel struct {
	GameID  string `gorm:"primaryKey;type:varchar(36)"`
	GenreID string `gorm:"primaryKey;type:varchar(36)"`
}

func (GameGenreModel) TableName() string { return "game_genres" }

type PlatformModel struct {
	ID   string `gorm:"primaryKey;type:varchar(36)"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex"`
}

func (PlatformModel) TableName() string { return "platforms" }

type GamePlatformModel struct {
	GameID     string `gorm:"primaryKey;type:varchar(36)"`
	PlatformID string `gorm:"primaryKey;type:varchar(36)"`
}

func (GamePlatformModel) TableName() string { return "game_platforms" }

// GameEntryModel is one game in a user's library.
type GameEntryModel struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `gorm:"type:varchar(36);not null;index"`
	GameID     string     `gorm:"type:varchar(36);not null;index"`
	PlatformID *string    `gorm:"type:varchar(36)"`
	Status     PlayStatus `gorm:"type:varchar(20);not null;default:not_started"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (GameEntryModel) TableName() string { return "game_entries" }

type FollowModel struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string `gorm:"type:varchar(36);not null;index"`
	FollowingID string `gorm:"type:varchar(36);not null;index"`
	FollowType  string `gorm:"type:varchar(20);not null;default:follow"`
	CreatedAt   time.Time
}

func (FollowModel) TableName() string { return "follows" }

// Models lists every read model, for migrations.
func Models() []any {
	return []any{
		&GameModel{},
		&UserModel{},
		&UserStatsModel{},
		&CodexEntryModel{},
		&GenreModel{},
		&GameGenreModel{},
		&PlatformModel{},
		&GamePlatformModel{},
		&GameEntryModel{},
		&FollowModel{},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
