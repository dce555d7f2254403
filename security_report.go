package tenauth

import "time"

// SecurityReport is a read-only snapshot of the engine's security posture.
type SecurityReport struct {
	SigningAlgorithm string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	Argon2           PasswordConfigReport
	TOTPDigits       int
	TOTPPeriod       int
	TOTPSkew         int
	BackupCodeCount  int
	LockoutEnabled   bool
	LockoutThreshold int
	AuditEnabled     bool
	MetricsEnabled   bool
	TenantCacheInUse bool
}

// PasswordConfigReport contains the Argon2 parameters active in the engine.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport summarizes the active configuration without exposing key
// material.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	_, cached := e.resolverDirectory().(*RedisTenantDirectory)
	return SecurityReport{
		SigningAlgorithm: "HS256",
		AccessTTL:        e.config.Token.AccessTTL,
		RefreshTTL:       e.config.Refresh.TTL,
		Argon2: PasswordConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		TOTPDigits:       e.config.TOTP.Digits,
		TOTPPeriod:       e.config.TOTP.Period,
		TOTPSkew:         e.config.TOTP.Skew,
		BackupCodeCount:  e.config.TOTP.BackupCodeCount,
		LockoutEnabled:   e.config.Lockout.Enabled,
		LockoutThreshold: e.config.Lockout.Threshold,
		AuditEnabled:     e.config.Audit.Enabled,
		MetricsEnabled:   e.config.Metrics.Enabled,
		TenantCacheInUse: cached,
	}
}

func (e *Engine) resolverDirectory() TenantDirectory {
	if e == nil || e.resolver == nil {
		return nil
	}
	return e.resolver.directory
}
