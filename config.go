package tenauth

import (
	"errors"
	"strings"
	"time"
)

// Config is the complete engine configuration. Instances are cloned by
// [Builder.WithConfig] and treated as immutable after Build.
type Config struct {
	Token    TokenConfig
	Refresh  RefreshConfig
	TOTP     TOTPConfig
	Password PasswordConfig
	Domain   DomainConfig
	Lockout  LockoutConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig drives access-token issuance and validation. SigningKey,
// Issuer, and Audience are fixed per deployment.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig drives opaque refresh-token issuance and rotation.
type RefreshConfig struct {
	TTL time.Duration
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig drives the two-factor manager. Skew counts 30-second steps on
// each side of now; the default of 2 gives a ±60 second tolerance window.
type TOTPConfig struct {
	Issuer           string
	Digits           int
	Period           int
	Skew             int
	Algorithm        string // "SHA1" (default), "SHA256", "SHA512"
	BackupCodeCount  int
	BackupCodeLength int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
DOMAIN CONFIG
====================================
*/

// DomainConfig drives domain-to-tenant resolution. MainDomains is the
// platform allow-list; LocalRoot is a development root (e.g. "localhost")
// treated as main when bare and as a tenant carrier when subdomained.
// SystemTenantID is the reserved tenant for main-domain logins.
type DomainConfig struct {
	MainDomains    []string
	LocalRoot      string
	SystemTenantID string
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig drives the failed-login counter. After Threshold
// consecutive failures the account is locked for Duration.
type LockoutConfig struct {
	Enabled   bool
	Threshold int
	Duration  time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. Callers fill in the
// signing key, issuer, audience, and tenant layout before building.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL: 60 * time.Minute,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		TOTP: TOTPConfig{
			Issuer:           "tenauth",
			Digits:           6,
			Period:           30,
			Skew:             2,
			Algorithm:        "SHA1",
			BackupCodeCount:  10,
			BackupCodeLength: 10,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Domain: DomainConfig{
			LocalRoot:      "localhost",
			SystemTenantID: "system",
		},
		Lockout: LockoutConfig{
			Enabled:   true,
			Threshold: 5,
			Duration:  15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.SigningKey = append([]byte(nil), cfg.Token.SigningKey...)
	out.Domain.MainDomains = append([]string(nil), cfg.Domain.MainDomains...)
	return out
}

// Validate rejects configurations the engine cannot run with. Zero values
// that have safe defaults are filled by DefaultConfig, not here.
func (c Config) Validate() error {
	if len(c.Token.SigningKey) < 32 {
		return errors.New("token signing key must be at least 32 bytes")
	}
	if strings.TrimSpace(c.Token.Issuer) == "" {
		return errors.New("token issuer required")
	}
	if strings.TrimSpace(c.Token.Audience) == "" {
		return errors.New("token audience required")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("access ttl must be positive")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("refresh ttl must be positive")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 8 {
		return errors.New("totp digits must be 6..8")
	}
	if c.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Skew < 0 || c.TOTP.Skew > 4 {
		return errors.New("totp skew must be 0..4")
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return errors.New("unsupported totp algorithm")
	}
	if c.TOTP.BackupCodeCount <= 0 {
		return errors.New("backup code count must be positive")
	}
	if c.TOTP.BackupCodeLength < 8 {
		return errors.New("backup code length must be at least 8")
	}
	if c.Lockout.Enabled {
		if c.Lockout.Threshold <= 0 {
			return errors.New("lockout threshold must be positive")
		}
		if c.Lockout.Duration <= 0 {
			return errors.New("lockout duration must be positive")
		}
	}
	if strings.TrimSpace(c.Domain.SystemTenantID) == "" {
		return errors.New("system tenant id required")
	}
	return nil
}
