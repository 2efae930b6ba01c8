package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rovora/search-service/internal/cache"
	"github.com/rovora/search-service/internal/config"
	"github.com/rovora/search-service/internal/consumer"
	"github.com/rovora/search-service/internal/handler"
	"github.com/rovora/search-service/internal/jobs"
	"github.com/rovora/search-service/internal/repository"
	"github.com/rovora/search-service/internal/service"
	"github.com/rovora/search-service/internal/trends"
	"github.com/rovora/search-service/pkg/database"
	pkglog "github.com/rovora/search-service/pkg/log"
	"github.com/rovora/search-service/pkg/response"
	"github.com/rovora/search-service/pkg/storage"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search HTTP API with its cache consumer and trend jobs.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 1. Load configuration and logger
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := pkglog.L()
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Data source
	searchRepo, closeRepo, err := newRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	// 3. Redis, shared by the response cache and the trend store
	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Trends.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	searchCache := cache.NewNoopCache()
	if cfg.Cache.Enabled {
		searchCache = cache.NewRedisSearchCache(redisClient, cfg.Cache.Prefix)
	}

	// 4. Media URLs
	media, err := storage.New(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("failed to init media storage: %w", err)
	}

	opts := service.Options{
		Cache:           searchCache,
		CachePrefix:     cfg.Cache.Prefix,
		CacheTTL:        cfg.Cache.TTL,
		Media:           media,
		MediaURLExpires: cfg.Media.URLExpires,
		PopularDefaults: cfg.Search.PopularDefaults,
	}

	// 5. Trend store and its decay job
	var scheduler *jobs.Scheduler
	if cfg.Trends.Enabled {
		trendStore := trends.NewStore(redisClient, cfg.Trends)
		opts.Trends = trendStore

		scheduler = jobs.NewScheduler()
		if err := scheduler.Register(jobs.TrendDecayTask(trendStore, cfg.Trends.DecaySchedule)); err != nil {
			return err
		}
		scheduler.Start()
		logger.Info().Str("schedule", cfg.Trends.DecaySchedule).Msg("trend decay scheduled")
	}

	searchService := service.NewSearchService(searchRepo, opts)

	// 6. Catalog change consumer
	var kafkaConsumer *consumer.ConfluentConsumer
	if cfg.Kafka.Enabled {
		kc, err := consumer.NewConfluentConsumer(cfg.Kafka, consumer.NewCacheInvalidator(searchCache))
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka consumer, cache invalidation disabled")
		} else if err := kc.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to start kafka consumer")
			_ = kc.Close()
		} else {
			kafkaConsumer = kc
		}
	} else {
		logger.Info().Msg("kafka disabled; cached responses expire by ttl only")
	}

	// 7. Router and HTTP server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.NewHandler(searchService).RegisterRoutes(r)
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "not found")
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("backend", cfg.Search.Backend).Msg("search-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 8. Wait for shutdown
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing kafka consumer")
		}
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.Info().Msg("search-service stopped")
	return nil
}

// newRepository opens the configured search backend. The returned func
// releases its connections.
func newRepository(cfg *config.Config) (repository.SearchRepository, func(), error) {
	logger := pkglog.L()

	switch cfg.Search.Backend {
	case "elasticsearch":
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: cfg.Elasticsearch.Addresses,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
		}

		res, err := esClient.Info()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
		}
		res.Body.Close()
		logger.Info().Strs("addresses", cfg.Elasticsearch.Addresses).Msg("elasticsearch connected")

		repo := repository.NewESSearchRepository(
			esClient,
			cfg.Elasticsearch.IndexGames,
			cfg.Elasticsearch.IndexUsers,
			cfg.Elasticsearch.IndexEntries,
		)
		return repo, func() {}, nil

	case "sql", "":
		db, err := database.New(cfg.Database.ToDatabaseConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

		return repository.NewGormSearchRepository(db), func() { sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
}
