package storage

import (
	"context"
	"fmt"
)

// New builds the configured backend. Driver "none" (or empty) returns a
// nil Storage, which leaves image references untouched.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocalStorage(cfg.Local), nil
	case "s3":
		s, err := NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported media driver: %s", cfg.Driver)
	}
}
