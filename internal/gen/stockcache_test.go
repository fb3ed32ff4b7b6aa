package gen

import (
	"context"
	"testing"
	"time"
)

type stubStockProvider struct {
	url   string
	err   error
	calls int
}

func (s *stubStockProvider) FindClip(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func TestCachingStockProviderFindClip(t *testing.T) {
	base := &stubStockProvider{url: "https://videos.example.com/clip.mp4"}
	cache := NewCachingStockProvider(base, time.Minute)

	ctx := context.Background()

	url, err := cache.FindClip(ctx, "coffee shop")
	if err != nil {
		t.Fatalf("find clip: %v", err)
	}
	if url != "https://videos.example.com/clip.mp4" {
		t.Fatalf("unexpected url: %s", url)
	}
	if base.calls != 1 {
		t.Fatalf("expected base called once got %d", base.calls)
	}

	if _, err := cache.FindClip(ctx, "coffee shop"); err != nil {
		t.Fatalf("find clip: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}
}

func TestCachingStockProviderDoesNotCacheMisses(t *testing.T) {
	cache := NewCachingStockProvider(nil, time.Minute)
	if _, err := cache.FindClip(context.Background(), "coffee shop"); err != ErrNoClip {
		t.Fatalf("expected no clip got %v", err)
	}

	base := &stubStockProvider{err: ErrNoClip}
	cache = NewCachingStockProvider(base, time.Minute)
	ctx := context.Background()
	if _, err := cache.FindClip(ctx, "skyline"); err != ErrNoClip {
		t.Fatalf("expected no clip got %v", err)
	}
	if _, err := cache.FindClip(ctx, "skyline"); err != ErrNoClip {
		t.Fatalf("expected no clip got %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected miss to bypass cache got %d calls", base.calls)
	}
}
