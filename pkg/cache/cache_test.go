package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "geometry:abc"); hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	want := []byte(`{"nodes":{}}`)
	if err := c.Set(ctx, "geometry:abc", want, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "geometry:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	// Expired entries are treated as misses
	if err := c.Set(ctx, "geometry:old", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "geometry:old"); hit {
		t.Error("expected expired entry to miss")
	}

	// Delete
	if err := c.Delete(ctx, "geometry:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "geometry:abc"); hit {
		t.Error("expected miss after Delete")
	}
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}

	// TTL expiry
	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expected miss after TTL elapsed")
	}

	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Different touch lists produce different geometry keys
	sk1 := k.SnapshotKey("hash123", SnapshotKeyOpts{Touched: []string{"s1", "s2"}})
	sk2 := k.SnapshotKey("hash123", SnapshotKeyOpts{Touched: []string{"s2", "s1"}})
	if sk1 == sk2 {
		t.Error("Different touch orders should produce different keys")
	}

	// Same inputs produce the same key
	if sk1 != k.SnapshotKey("hash123", SnapshotKeyOpts{Touched: []string{"s1", "s2"}}) {
		t.Error("SnapshotKey should be deterministic")
	}

	// Format distinguishes artifact keys
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "diagram:abc:")

	key := scoped.SnapshotKey("h", SnapshotKeyOpts{})
	want := "diagram:abc:" + base.SnapshotKey("h", SnapshotKeyOpts{})
	if key != want {
		t.Errorf("SnapshotKey = %q, want %q", key, want)
	}
}
