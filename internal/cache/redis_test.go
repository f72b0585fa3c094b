// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, newRedisCache(client, "", zerolog.Nop())
}

func TestNewRedisCache_ConnectsAndFails(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	c, err := NewRedisCache(RedisConfig{Addr: mr.Addr(), Namespace: "test:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected connection to succeed: %v", err)
	}
	c.Set("k", []byte("v"), time.Minute)
	if !mr.Exists("test:k") {
		t.Error("expected key to be stored below the namespace")
	}
	_ = c.Close()

	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisCache(RedisConfig{Addr: addr}, zerolog.Nop()); err == nil {
		t.Error("expected connection to fail after shutdown")
	}
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	cache.Set("producers", []byte(`[{"id":"a"}]`), 5*time.Minute)

	val, found := cache.Get("producers")
	if !found {
		t.Fatal("expected value to be found")
	}
	if string(val) != `[{"id":"a"}]` {
		t.Errorf("unexpected value %q", val)
	}

	stats := cache.Stats()
	if stats.Sets != 1 {
		t.Errorf("expected 1 set, got %d", stats.Sets)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
}

func TestRedisCache_GetMissing(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	val, found := cache.Get("nonexistent")
	if found {
		t.Error("expected value to not be found")
	}
	if val != nil {
		t.Errorf("expected nil value, got %v", val)
	}
	if stats := cache.Stats(); stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	cache.Set("ttl-key", []byte("ttl-value"), 100*time.Millisecond)
	if _, found := cache.Get("ttl-key"); !found {
		t.Fatal("expected value to be found immediately")
	}

	mr.FastForward(200 * time.Millisecond)

	if _, found := cache.Get("ttl-key"); found {
		t.Error("expected value to be expired")
	}
}

func TestRedisCache_Delete(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	cache.Set("delete-key", []byte("v"), 5*time.Minute)
	cache.Delete("delete-key")

	if _, found := cache.Get("delete-key"); found {
		t.Error("expected value to be deleted")
	}
}

func TestRedisCache_InvalidatePrefix(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	cache.Set("producers", []byte("list"), 5*time.Minute)
	cache.Set("producers/a", []byte("a"), 5*time.Minute)
	cache.Set("producers/progress/a", []byte("pa"), 5*time.Minute)
	cache.Set("producers/b", []byte("b"), 5*time.Minute)
	if err := mr.Set("foreign:producers", "keep"); err != nil {
		t.Fatal(err)
	}

	cache.InvalidatePrefix("producers/a")
	if _, found := cache.Get("producers/a"); found {
		t.Error("expected producers/a to be invalidated")
	}
	if _, found := cache.Get("producers/b"); !found {
		t.Error("expected producers/b to survive")
	}

	cache.InvalidatePrefix("producers")
	if size := cache.Stats().CurrentSize; size != 0 {
		t.Errorf("expected empty namespace, got %d keys", size)
	}
	if !mr.Exists("foreign:producers") {
		t.Error("keys outside the namespace must not be touched")
	}
	if ev := cache.Stats().Evictions; ev != 4 {
		t.Errorf("expected 4 evictions, got %d", ev)
	}
}

func TestRedisCache_Clear(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	cache.Set("key1", []byte("value1"), 5*time.Minute)
	cache.Set("key2", []byte("value2"), 5*time.Minute)
	cache.Set("key3", []byte("value3"), 5*time.Minute)

	if stats := cache.Stats(); stats.CurrentSize != 3 {
		t.Fatalf("expected 3 items, got %d", stats.CurrentSize)
	}

	cache.Clear()

	if stats := cache.Stats(); stats.CurrentSize != 0 {
		t.Errorf("expected 0 items after clear, got %d", stats.CurrentSize)
	}
}

func TestRedisCache_HealthCheck(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()
	if err := cache.HealthCheck(ctx); err != nil {
		t.Errorf("expected healthy Redis, got error: %v", err)
	}

	mr.Close()

	if err := cache.HealthCheck(ctx); err == nil {
		t.Error("expected health check to fail after Redis shutdown")
	}
}

func TestRedisCache_ConcurrentAccess(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	const numGoroutines = 10
	const numOps = 50

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numOps; j++ {
				cache.Set("concurrent-key", []byte("v"), 5*time.Minute)
				cache.Get("concurrent-key")
			}
			done <- true
		}()
	}
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	if stats := cache.Stats(); stats.Sets != int64(numGoroutines*numOps) {
		t.Errorf("expected %d sets, got %d", numGoroutines*numOps, stats.Sets)
	}
}

func BenchmarkRedisCache_Get(b *testing.B) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		b.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := newRedisCache(client, "", zerolog.Nop())
	cache.Set("bench-key", []byte("bench-value"), 5*time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get("bench-key")
	}
}
