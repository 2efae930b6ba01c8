// Package trends keeps a decaying count of recent search queries in a
// Redis sorted set.
package trends

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"github.com/rovora/search-service/internal/config"
)

const (
	maxQueryRunes = 100

	// Scores that decay below this are dropped.
	pruneBelow = "(0.05"
)

type Store struct {
	client     *redis.Client
	key        string
	factor     float64
	maxEntries int64
}

func NewStore(client *redis.Client, cfg config.TrendsConfig) *Store {
	return &Store{
		client:     client,
		key:        cfg.Key,
		factor:     cfg.DecayFactor,
		maxEntries: cfg.MaxEntries,
	}
}

// Normalize folds a query into its trend form. It returns "" for queries
// that should not be counted.
func Normalize(query string) string {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" || utf8.RuneCountInString(q) > maxQueryRunes {
		return ""
	}
	return q
}

// Record counts one occurrence of query.
func (s *Store) Record(ctx context.Context, query string) error {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	if err := s.client.ZIncrBy(ctx, s.key, 1, q).Err(); err != nil {
		return fmt.Errorf("failed to record trend: %w", err)
	}
	return nil
}

// Top returns up to limit queries, most frequent first.
func (s *Store) Top(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	queries, err := s.client.ZRevRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trends: %w", err)
	}
	return queries, nil
}

// Decay scales every score by the configured factor, drops near-zero
// entries and keeps only the top maxEntries.
func (s *Store) Decay(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZUnionStore(ctx, s.key, &redis.ZStore{
			Keys:    []string{s.key},
			Weights: []float64{s.factor},
		})
		pipe.ZRemRangeByScore(ctx, s.key, "-inf", pruneBelow)
		if s.maxEntries > 0 {
			pipe.ZRemRangeByRank(ctx, s.key, 0, -(s.maxEntries + 1))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to decay trends: %w", err)
	}
	return nil
}
