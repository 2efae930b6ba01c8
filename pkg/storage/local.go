package storage

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// LocalConfig holds configuration for locally served media.
type LocalConfig struct {
	BaseURL string `mapstructure:"base_url"` // e.g. "/media" or "https://cdn.rovora.gg"
}

// LocalStorage maps object keys onto a static base URL.
type LocalStorage struct {
	baseURL string
}

// NewLocalStorage creates a new LocalStorage.
func NewLocalStorage(cfg LocalConfig) *LocalStorage {
	return &LocalStorage{baseURL: strings.TrimSuffix(cfg.BaseURL, "/")}
}

// GetURL joins the base URL and the escaped key.
func (s *LocalStorage) GetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/"), nil
}
