package config

import (
	"time"

	pkgconfig "github.com/rovora/search-service/pkg/config"
	"github.com/rovora/search-service/pkg/database"
	"github.com/rovora/search-service/pkg/storage"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Search        SearchConfig
	Elasticsearch ElasticsearchConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Trends        TrendsConfig
	Kafka         KafkaConfig
	Media         storage.Config
	Log           LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	FilePath        string        `mapstructure:"file_path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime int           `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	LogLevel        string        `mapstructure:"log_level"`
}

// ToDatabaseConfig converts to the pkg/database connection config.
func (c DatabaseConfig) ToDatabaseConfig() *database.Config {
	return &database.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.DBName,
		SSLMode:         c.SSLMode,
		TimeZone:        c.TimeZone,
		FilePath:        c.FilePath,
		MaxIdleConns:    c.MaxIdleConns,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		SlowThreshold:   c.SlowThreshold,
		LogLevel:        c.LogLevel,
	}
}

type SearchConfig struct {
	Backend         string   `mapstructure:"backend"` // sql, elasticsearch
	PopularDefaults []string `mapstructure:"popular_defaults"`
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	IndexGames   string   `mapstructure:"index_games"`
	IndexUsers   string   `mapstructure:"index_users"`
	IndexEntries string   `mapstructure:"index_entries"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type TrendsConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Key           string  `mapstructure:"key"`
	DecaySchedule string  `mapstructure:"decay_schedule"`
	DecayFactor   float64 `mapstructure:"decay_factor"`
	MaxEntries    int64   `mapstructure:"max_entries"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// DefaultPopularSearches is served when no trend data is available.
var DefaultPopularSearches = []string{
	"The Witcher 3",
	"Cyberpunk 2077",
	"Elden Ring",
	"God of War",
	"Spider-Man",
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8094)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "rovora")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "rovora")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.file_path", "rovora.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.slow_threshold", "200ms")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("search.backend", "sql")
	v.SetDefault("search.popular_defaults", DefaultPopularSearches)
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.index_games", "rovora-games")
	v.SetDefault("elasticsearch.index_users", "rovora-users")
	v.SetDefault("elasticsearch.index_entries", "rovora-entries")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.prefix", "search")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("trends.enabled", true)
	v.SetDefault("trends.key", "search:popular")
	v.SetDefault("trends.decay_schedule", "@hourly")
	v.SetDefault("trends.decay_factor", 0.9)
	v.SetDefault("trends.max_entries", 500)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "rovora.catalog.changes")
	v.SetDefault("kafka.group_id", "search-service")
	v.SetDefault("media.driver", "none")
	v.SetDefault("media.url_expires", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("search.backend", "SEARCH_BACKEND")
	v.BindEnv("elasticsearch.addresses", "ES_ADDRESSES")
	v.BindEnv("elasticsearch.username", "ES_USERNAME")
	v.BindEnv("elasticsearch.password", "ES_PASSWORD")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("media.s3.bucket", "S3_BUCKET")
	v.BindEnv("media.s3.region", "S3_REGION")
	v.BindEnv("media.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("media.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("media.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
