package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type failingStorage struct{}

func (failingStorage) GetURL(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("no credentials")
}

func TestResolve(t *testing.T) {
	local := NewLocalStorage(LocalConfig{BaseURL: "https://cdn.rovora.gg/"})

	tests := []struct {
		name    string
		s       Storage
		ref     string
		want    string
		wantErr bool
	}{
		{"empty ref", local, "", "", false},
		{"nil storage keeps key", nil, "covers/hades.png", "covers/hades.png", false},
		{"absolute url", local, "https://images.igdb.com/x.jpg", "https://images.igdb.com/x.jpg", false},
		{"protocol relative", local, "//images.igdb.com/x.jpg", "//images.igdb.com/x.jpg", false},
		{"data uri", failingStorage{}, "data:image/png;base64,AAAA", "data:image/png;base64,AAAA", false},
		{"key", local, "covers/hades.png", "https://cdn.rovora.gg/covers/hades.png", false},
		{"leading slash", local, "/avatars/alice.png", "https://cdn.rovora.gg/avatars/alice.png", false},
		{"escaped segment", local, "covers/hades ii.png", "https://cdn.rovora.gg/covers/hades%20ii.png", false},
		{"backend error", failingStorage{}, "covers/hades.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(context.Background(), tt.s, tt.ref, time.Hour)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Driver: "none"})
	if err != nil || s != nil {
		t.Errorf("none driver = %v, %v; want nil, nil", s, err)
	}

	s, err = New(ctx, Config{Driver: "local", Local: LocalConfig{BaseURL: "/media"}})
	if err != nil {
		t.Fatalf("local driver: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("local driver built %T", s)
	}

	if _, err := New(ctx, Config{Driver: "ftp"}); err == nil {
		t.Error("unknown driver accepted")
	}
}

func TestS3GetURL(t *testing.T) {
	ctx := context.Background()
	base := S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "media",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	}

	public := base
	public.PublicURL = "https://media.rovora.gg/"
	s, err := NewS3Storage(ctx, public)
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}
	got, err := s.GetURL(ctx, "covers/hades.png", time.Hour)
	if err != nil || got != "https://media.rovora.gg/covers/hades.png" {
		t.Errorf("public GetURL = %q, %v", got, err)
	}

	s, err = NewS3Storage(ctx, base)
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}
	got, err = s.GetURL(ctx, "covers/hades.png", 10*time.Minute)
	if err != nil {
		t.Fatalf("presigned GetURL: %v", err)
	}
	if !strings.HasPrefix(got, "http://localhost:9000/media/covers/hades.png?") {
		t.Errorf("presigned url = %q", got)
	}
	if !strings.Contains(got, "X-Amz-Expires=600") || !strings.Contains(got, "X-Amz-Signature=") {
		t.Errorf("presigned url missing signature params: %q", got)
	}
}
