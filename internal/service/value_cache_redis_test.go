package service

import (
	"context"
	"testing"
	"time"
)

func TestRedisValueCacheRoundTrip(t *testing.T) {
	_, client := newRedisClientForTest(t)
	store := NewRedisValueCacheStore(client, "moodmeter_test")
	ctx := context.Background()

	if err := store.Set(ctx, "branding", "1", "#1E88E5", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "branding", "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "#1E88E5" {
		t.Fatalf("got (%q,%v), want (#1E88E5,true)", value, ok)
	}
	if _, ok, _ := store.Get(ctx, "branding", "missing"); ok {
		t.Fatal("unexpected hit for missing key")
	}
}

func TestRedisValueCacheTTL(t *testing.T) {
	server, client := newRedisClientForTest(t)
	store := NewRedisValueCacheStore(client, "moodmeter_test")
	ctx := context.Background()

	if err := store.Set(ctx, "role", "a@example.edu", "mentor:m-1", time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	server.FastForward(2 * time.Second)
	if _, ok, _ := store.Get(ctx, "role", "a@example.edu"); ok {
		t.Fatal("expired entry must miss")
	}
}

func TestRedisValueCacheInvalidateNamespace(t *testing.T) {
	_, client := newRedisClientForTest(t)
	store := NewRedisValueCacheStore(client, "moodmeter_test")
	ctx := context.Background()

	if err := store.Set(ctx, "role", "a", "x", time.Minute); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := store.Set(ctx, "branding", "1", "#fff", time.Minute); err != nil {
		t.Fatalf("set branding: %v", err)
	}

	if err := store.InvalidateNamespace(ctx, "role"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "role", "a"); ok {
		t.Fatal("invalidated namespace must miss")
	}
	if _, ok, _ := store.Get(ctx, "branding", "1"); !ok {
		t.Fatal("other namespace must survive")
	}
}

func TestRedisValueCacheNilClientDegrades(t *testing.T) {
	store := NewRedisValueCacheStore(nil, "")
	ctx := context.Background()

	if err := store.Set(ctx, "role", "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := store.Get(ctx, "role", "k"); err != nil || ok {
		t.Fatalf("nil-client get = (%v,%v), want miss", ok, err)
	}
}
