package cache

import (
	"context"
	"testing"
	"time"
)

func TestTranslationCacheRoundtrip(t *testing.T) {
	backend := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = backend.Close() }()
	tc := NewTranslationCache(backend, time.Minute)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, 5, "en"); ok {
		t.Fatal("empty cache should miss")
	}

	want := Translation{Title: "Festival", Description: "Spring festival"}
	if err := tc.Put(ctx, 5, "en", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := tc.Get(ctx, 5, "en")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if *got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	// Keyed per language and per event.
	if _, ok := tc.Get(ctx, 5, "mn"); ok {
		t.Error("different language should miss")
	}
	if _, ok := tc.Get(ctx, 6, "en"); ok {
		t.Error("different event should miss")
	}
}

func TestTranslationCacheInvalidate(t *testing.T) {
	backend := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = backend.Close() }()
	tc := NewTranslationCache(backend, time.Minute)
	ctx := context.Background()

	_ = tc.Put(ctx, 1, "en", Translation{Title: "Old"})
	if err := tc.Invalidate(ctx, 1, "en"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := tc.Get(ctx, 1, "en"); ok {
		t.Error("invalidated entry should miss")
	}
}

func TestTypedCacheIgnoresCorruptEntries(t *testing.T) {
	backend := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = backend.Close() }()
	typed := NewTypedCache[Translation](backend, time.Minute)
	ctx := context.Background()

	_ = backend.Set(ctx, "bad", []byte("{not json"), 0)
	if _, ok := typed.Get(ctx, "bad"); ok {
		t.Error("corrupt entry should read as a miss")
	}
}
