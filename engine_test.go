package tenauth_test

import (
	"github.com/tripwell/tenauth"
	"sync"
	"testing"
	"time"

	"github.com/tripwell/tenauth/memstore"
	"github.com/tripwell/tenauth/password"
)

// fakeClock is a mutable clock shared between the test and the engine.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func engineTestConfig() tenauth.Config {
	cfg := tenauth.DefaultConfig()
	cfg.Token.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.Issuer = "tenauth-test"
	cfg.Token.Audience = "tenauth-test"
	cfg.Domain.MainDomains = []string{"admin.example.com"}

	// Cheap hashing keeps the suite fast; production costs are exercised
	// in package password.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	cfg.TOTP.Skew = 1
	cfg.Lockout.Threshold = 3
	return cfg
}

func newTestEngine(t *testing.T, cfg tenauth.Config, opts ...func(*tenauth.Builder)) (*tenauth.Engine, *memstore.Store, *fakeClock) {
	t.Helper()

	store := memstore.New()
	clock := newFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	builder := tenauth.New().
		WithConfig(cfg).
		WithIdentityStore(store).
		WithTenantDirectory(tenauth.StaticTenantDirectory{"acme": "tenant-acme", "globe": "tenant-globe"}).
		WithClock(clock.Now)
	for _, opt := range opts {
		opt(builder)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store, clock
}

func hashTestPassword(t *testing.T, cfg tenauth.Config, plaintext string) string {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("argon2 init failed: %v", err)
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("argon2 hash failed: %v", err)
	}
	return hash
}

func seedTestPrincipal(t *testing.T, store *memstore.Store, cfg tenauth.Config, p tenauth.Principal, plaintext string) {
	t.Helper()
	p.PasswordHash = hashTestPassword(t, cfg, plaintext)
	store.SeedPrincipal(p)
}
