package storage

import (
	"context"
	"strings"
	"time"
)

// Storage resolves stored media objects (game covers, avatars) into URLs
// a browser can load. The search service never writes media.
type Storage interface {
	// GetURL returns a URL for the object with the given key.
	// Presigning backends honour expires; others ignore it.
	GetURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Config selects and configures the media backend.
type Config struct {
	Driver     string        `mapstructure:"driver"` // "none", "local", "s3"
	URLExpires time.Duration `mapstructure:"url_expires"`
	Local      LocalConfig   `mapstructure:"local"`
	S3         S3Config      `mapstructure:"s3"`
}

// IsAbsoluteURL reports whether ref is already a loadable URL rather than
// an object key.
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:")
}

// Resolve turns an image reference into a URL. Empty references stay
// empty, absolute URLs pass through, and keys go through s. A nil s
// returns keys untouched.
func Resolve(ctx context.Context, s Storage, ref string, expires time.Duration) (string, error) {
	if ref == "" || s == nil || IsAbsoluteURL(ref) {
		return ref, nil
	}
	return s.GetURL(ctx, strings.TrimPrefix(ref, "/"), expires)
}
