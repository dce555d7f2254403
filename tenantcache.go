package tenauth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// negative cache entries store this sentinel instead of a tenant id.
const tenantCacheMiss = "\x00miss"

// RedisTenantDirectory caches another TenantDirectory's answers in Redis
// with bounded staleness, keeping the remote lookup off the hot login path.
// Cache failures fall through to the inner directory; inner failures still
// degrade to not-found, so the fail-closed semantics of resolution are
// preserved.
type RedisTenantDirectory struct {
	inner       TenantDirectory
	client      *redis.Client
	prefix      string
	ttl         time.Duration
	negativeTTL time.Duration
}

// NewRedisTenantDirectory wraps inner with a Redis cache. Positive answers
// live for ttl, not-found answers for negativeTTL (capped at ttl).
func NewRedisTenantDirectory(client *redis.Client, inner TenantDirectory, ttl time.Duration) *RedisTenantDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	neg := ttl / 10
	if neg < time.Second {
		neg = time.Second
	}
	return &RedisTenantDirectory{
		inner:       inner,
		client:      client,
		prefix:      "tenauth:tenant:",
		ttl:         ttl,
		negativeTTL: neg,
	}
}

// LookupTenant implements TenantDirectory.
func (d *RedisTenantDirectory) LookupTenant(ctx context.Context, subdomain string) (string, error) {
	if d == nil || d.inner == nil {
		return "", ErrTenantNotFound
	}

	key := d.prefix + subdomain
	if d.client != nil {
		cached, err := d.client.Get(ctx, key).Result()
		switch {
		case err == nil && cached == tenantCacheMiss:
			return "", ErrTenantNotFound
		case err == nil && cached != "":
			return cached, nil
		}
		// redis.Nil and transport errors both fall through to the inner
		// directory.
	}

	tenantID, err := d.inner.LookupTenant(ctx, subdomain)
	if err != nil || tenantID == "" {
		if d.client != nil {
			_ = d.client.Set(ctx, key, tenantCacheMiss, d.negativeTTL).Err()
		}
		return "", ErrTenantNotFound
	}

	if d.client != nil {
		_ = d.client.Set(ctx, key, tenantID, d.ttl).Err()
	}
	return tenantID, nil
}

// Invalidate drops a cached answer, for use when a tenant's subdomain
// mapping changes.
func (d *RedisTenantDirectory) Invalidate(ctx context.Context, subdomain string) error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Del(ctx, d.prefix+subdomain).Err()
}
