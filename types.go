package tenauth

import (
	"context"
	"time"
)

// Principal is a registered account scoped to one tenant. Email is
// case-insensitive and unique within a tenant. The refresh-token hash and
// its expiry are set and cleared together; revocation stores a zero hash
// with an already-expired timestamp.
type Principal struct {
	ID           string
	TenantID     string
	Email        string
	Name         string
	PasswordHash string
	Active       bool
	Roles        []string

	FailedLogins int
	LockedUntil  *time.Time
	LastLoginAt  *time.Time

	RefreshHash      [32]byte
	RefreshExpiresAt time.Time
}

// PrimaryRole returns the first-listed role, the one checked against the
// admission policy.
func (p *Principal) PrimaryRole() string {
	if p == nil || len(p.Roles) == 0 {
		return ""
	}
	return p.Roles[0]
}

// Locked reports whether a lockout window is still open at now.
func (p *Principal) Locked(now time.Time) bool {
	return p != nil && p.LockedUntil != nil && now.Before(*p.LockedUntil)
}

// Profile is the public view of a principal returned inside a Session.
// It never carries the password hash or the refresh token value.
type Profile struct {
	ID       string
	TenantID string
	Email    string
	Name     string
	Roles    []string
}

// Session is the result of a successful Login or Refresh.
type Session struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	Profile          Profile
}

// AuthResult is returned by [Engine.Validate] for a valid access token.
type AuthResult struct {
	PrincipalID string
	TenantID    string
	Email       string
	TokenID     string
	Roles       []string
	ExpiresAt   time.Time
}

// BackupCodeRecord stores the SHA-256 hash of a single backup code.
// The plaintext is never persisted.
type BackupCodeRecord struct {
	Hash [32]byte
}

// TwoFactorEnrollment is the per-principal two-factor state. A freshly
// generated secret lands in the Pending slots and must not satisfy a login
// challenge; one successful confirmation promotes it to the authoritative
// Secret/BackupCodes pair and flips Enabled. A previously enabled secret
// stays valid until that promotion.
type TwoFactorEnrollment struct {
	PrincipalID string

	Secret      []byte
	BackupCodes []BackupCodeRecord
	Enabled     bool

	PendingSecret      []byte
	PendingBackupCodes []BackupCodeRecord

	// LastUsedStep is the TOTP time step of the last accepted code.
	// A code for a step at or before it never validates again.
	LastUsedStep int64

	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
}

// TwoFactorAction tags a TwoFactorActivityRecord.
type TwoFactorAction string

const (
	TwoFactorEnabled    TwoFactorAction = "enabled"
	TwoFactorDisabled   TwoFactorAction = "disabled"
	TwoFactorVerified   TwoFactorAction = "verified"
	TwoFactorBackupUsed TwoFactorAction = "backup_used"
	TwoFactorFailed     TwoFactorAction = "failed"
)

// TwoFactorActivityRecord is one append-only audit row. Never mutated
// after creation.
type TwoFactorActivityRecord struct {
	PrincipalID string
	Action      TwoFactorAction
	Success     bool
	At          time.Time
	IP          string
}

// TwoFactorSetup is returned by [Engine.GenerateTwoFactorSetup]. The
// plaintext backup codes appear here exactly once.
type TwoFactorSetup struct {
	SecretBase32    string
	ProvisioningURI string
	BackupCodes     []string
}

// IdentityStore is the persistence collaborator. Implementations must be
// durable and strongly consistent for a single principal's record, and the
// conditional-update methods must apply as a single read-modify-write.
type IdentityStore interface {
	GetPrincipalByEmailAndTenant(ctx context.Context, email, tenantID string) (*Principal, error)
	GetPrincipalByID(ctx context.Context, id string) (*Principal, error)

	// SetRefreshHash unconditionally stores a refresh-token hash and expiry.
	// Used for initial issuance and for revocation (zero hash, past expiry).
	SetRefreshHash(ctx context.Context, principalID string, hash [32]byte, expiresAt time.Time) error

	// RotateRefreshHash replaces the stored hash only if it still equals
	// expected. A mismatch returns ErrRefreshConflict and leaves the stored
	// value untouched; the update is all-or-nothing.
	RotateRefreshHash(ctx context.Context, principalID string, expected, next [32]byte, expiresAt time.Time) error

	RecordLogin(ctx context.Context, principalID string, at time.Time) error
	RecordLoginFailure(ctx context.Context, principalID string, failures int, lockedUntil *time.Time) error

	// GetTwoFactorEnrollment returns (nil, nil) when the principal has no
	// enrollment.
	GetTwoFactorEnrollment(ctx context.Context, principalID string) (*TwoFactorEnrollment, error)
	UpsertTwoFactorEnrollment(ctx context.Context, enrollment *TwoFactorEnrollment) error
	DeleteTwoFactorEnrollment(ctx context.Context, principalID string) error

	// ConsumeBackupCode atomically removes the code with the given hash from
	// the enrollment and reports whether it was present. At most one of two
	// concurrent calls with the same hash observes true.
	ConsumeBackupCode(ctx context.Context, principalID string, hash [32]byte) (bool, error)

	// UpdateTwoFactorUsage advances the last-used step and stamp after an
	// accepted TOTP code.
	UpdateTwoFactorUsage(ctx context.Context, principalID string, step int64, at time.Time) error

	AppendTwoFactorActivity(ctx context.Context, record TwoFactorActivityRecord) error
}

// TenantDirectory resolves a subdomain to a tenant identifier. Lookups are
// treated as fallible and slow; any failure degrades to ErrTenantNotFound
// at the resolver, never to a hard error.
type TenantDirectory interface {
	LookupTenant(ctx context.Context, subdomain string) (string, error)
}

// StaticTenantDirectory is a fixed subdomain-to-tenant map. Useful for tests
// and single-box deployments.
type StaticTenantDirectory map[string]string

// LookupTenant implements TenantDirectory.
func (d StaticTenantDirectory) LookupTenant(_ context.Context, subdomain string) (string, error) {
	if id, ok := d[subdomain]; ok {
		return id, nil
	}
	return "", ErrTenantNotFound
}
