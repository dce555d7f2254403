package tenauth

import (
	"errors"
	"time"

	internalaudit "github.com/tripwell/tenauth/internal/audit"
	"github.com/tripwell/tenauth/jwt"
	"github.com/tripwell/tenauth/password"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Collaborators are attached with the With*
// methods; Build validates the configuration and wires everything once.
type Builder struct {
	config Config
	redis  *redis.Client

	store     IdentityStore
	directory TenantDirectory
	auditSink AuditSink
	events    EventPublisher
	cacheTTL  time.Duration
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration. The value is cloned; later
// mutations by the caller have no effect.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithIdentityStore attaches the persistence collaborator. Required.
func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.store = store
	return b
}

// WithTenantDirectory attaches the tenant lookup collaborator. Required
// when logins present domains instead of explicit tenant ids.
func (b *Builder) WithTenantDirectory(directory TenantDirectory) *Builder {
	b.directory = directory
	return b
}

// WithRedis attaches a Redis client. When set, tenant-directory answers are
// cached in Redis with bounded staleness.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithTenantCacheTTL bounds the staleness of cached tenant resolutions.
func (b *Builder) WithTenantCacheTTL(ttl time.Duration) *Builder {
	b.cacheTTL = ttl
	return b
}

// WithAuditSink attaches the audit event consumer.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithEventPublisher attaches the login-event publisher.
func (b *Builder) WithEventPublisher(publisher EventPublisher) *Builder {
	b.events = publisher
	return b
}

// WithClock overrides the engine clock. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration, constructs all managers, and returns
// the Engine. A Builder builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("identity store required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		SigningKey: b.config.Token.SigningKey,
		Issuer:     b.config.Token.Issuer,
		Audience:   b.config.Token.Audience,
		AccessTTL:  b.config.Token.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	passwords, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	directory := b.directory
	if directory != nil && b.redis != nil {
		directory = NewRedisTenantDirectory(b.redis, directory, b.cacheTTL)
	}

	events := b.events
	if events == nil {
		events = NoOpPublisher{}
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	engine := &Engine{
		config:    b.config,
		store:     b.store,
		resolver:  newDomainResolver(b.config.Domain, directory),
		tokens:    tokens,
		passwords: passwords,
		totp:      newTOTPManager(b.config.TOTP),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(b.config.Metrics),
		events:  events,
		now:     clock,
	}

	b.built = true
	return engine, nil
}
