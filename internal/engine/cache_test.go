package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("transcript", "aaaaaaaaaaa")
		k2 := CacheKey("transcript", "bbbbbbbbbbb")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "gr:" {
			t.Errorf("expected gr: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	t.Cleanup(func() { textCache = nil })

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheSet(ctx, key, "hello")

	got, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCacheDisabled(t *testing.T) {
	textCache = nil
	ctx := context.Background()
	CacheSet(ctx, "k", "v")
	if _, ok := CacheGet(ctx, "k"); ok {
		t.Error("nil cache should never hit")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", 1*time.Minute, 5, 5*time.Minute)
	t.Cleanup(func() { textCache = nil })

	ctx := context.Background()
	for i := range 10 {
		CacheSet(ctx, fmt.Sprintf("key-%d", i), "v")
		time.Sleep(time.Millisecond)
	}

	count := 0
	textCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 5 {
		t.Errorf("expected at most 5 entries, got %d", count)
	}
	if _, ok := CacheGet(ctx, "key-9"); !ok {
		t.Error("newest entry should survive eviction")
	}
}
