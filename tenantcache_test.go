package tenauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// countingDirectory records how often the inner lookup actually runs.
type countingDirectory struct {
	mu      sync.Mutex
	answers map[string]string
	calls   int
}

func (d *countingDirectory) LookupTenant(_ context.Context, subdomain string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	tenantID, ok := d.answers[subdomain]
	if !ok {
		return "", ErrTenantNotFound
	}
	return tenantID, nil
}

func (d *countingDirectory) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func newCacheFixture(t *testing.T) (*RedisTenantDirectory, *countingDirectory, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingDirectory{answers: map[string]string{"acme": "tenant-acme"}}
	return NewRedisTenantDirectory(client, inner, time.Minute), inner, mr
}

func TestTenantCacheServesRepeatLookups(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tenantID, err := cache.LookupTenant(ctx, "acme")
		if err != nil {
			t.Fatalf("lookup %d failed: %v", i, err)
		}
		if tenantID != "tenant-acme" {
			t.Fatalf("lookup %d = %q", i, tenantID)
		}
	}

	if got := inner.Calls(); got != 1 {
		t.Fatalf("inner directory called %d times, want 1", got)
	}
}

func TestTenantCacheNegativeCaching(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.LookupTenant(ctx, "ghost"); !errors.Is(err, ErrTenantNotFound) {
			t.Fatalf("lookup %d: got %v, want not found", i, err)
		}
	}

	if got := inner.Calls(); got != 1 {
		t.Fatalf("inner directory called %d times, want 1", got)
	}
}

func TestTenantCacheExpiry(t *testing.T) {
	cache, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	if _, err := cache.LookupTenant(ctx, "acme"); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cache.LookupTenant(ctx, "acme"); err != nil {
		t.Fatalf("post-expiry lookup failed: %v", err)
	}

	if got := inner.Calls(); got != 2 {
		t.Fatalf("inner directory called %d times, want 2 after expiry", got)
	}
}

func TestTenantCacheInvalidate(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	if _, err := cache.LookupTenant(ctx, "acme"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if err := cache.Invalidate(ctx, "acme"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if _, err := cache.LookupTenant(ctx, "acme"); err != nil {
		t.Fatalf("lookup after invalidate failed: %v", err)
	}

	if got := inner.Calls(); got != 2 {
		t.Fatalf("inner directory called %d times, want 2 after invalidation", got)
	}
}

func TestTenantCacheFallsThroughWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingDirectory{answers: map[string]string{"acme": "tenant-acme"}}
	cache := NewRedisTenantDirectory(client, inner, time.Minute)

	mr.Close()

	tenantID, err := cache.LookupTenant(context.Background(), "acme")
	if err != nil {
		t.Fatalf("lookup with redis down failed: %v", err)
	}
	if tenantID != "tenant-acme" {
		t.Fatalf("got %q, want tenant-acme", tenantID)
	}
	if got := inner.Calls(); got != 1 {
		t.Fatalf("inner directory called %d times, want 1", got)
	}
}

func TestTenantCacheWithoutInnerDirectory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisTenantDirectory(client, nil, time.Minute)
	if _, err := cache.LookupTenant(context.Background(), "acme"); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}
