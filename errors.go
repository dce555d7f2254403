package tenauth

import (
	"errors"
	"fmt"
)

// The four error classes every Engine operation resolves to. Fine-grained
// sentinels below wrap one of these, so callers can branch with
// errors.Is(err, ErrUnauthorized) without learning which specific check
// failed.
var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unresolvable tenant or unknown resource the
	// caller is entitled to know about.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks bad credentials, bad or expired refresh tokens,
	// and bad two-factor codes. These are deliberately indistinguishable
	// from each other at the API surface.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a deactivated or locked account, an empty role set,
	// a role-domain mismatch, or a failed password re-check.
	ErrForbidden = errors.New("forbidden")
)

var (
	// ErrInvalidCredentials covers both "unknown principal" and "wrong
	// password" so that login failures cannot enumerate accounts.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	// ErrRefreshInvalid covers a missing, mismatched, or expired refresh token.
	ErrRefreshInvalid = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	// ErrTwoFactorRequired is returned by Login when the principal has an
	// enabled enrollment and no code was presented.
	ErrTwoFactorRequired = fmt.Errorf("%w: two-factor code required", ErrUnauthorized)
	// ErrTwoFactorInvalid covers a wrong TOTP code and an unknown or already
	// consumed backup code.
	ErrTwoFactorInvalid = fmt.Errorf("%w: invalid two-factor code", ErrUnauthorized)
	// ErrTokenInvalid is the uniform failure for access-token validation.
	ErrTokenInvalid = fmt.Errorf("%w: invalid token", ErrUnauthorized)

	// ErrAccountInactive is returned for principals with Active=false.
	ErrAccountInactive = fmt.Errorf("%w: account inactive", ErrForbidden)
	// ErrAccountLocked is returned while a lockout window is open.
	ErrAccountLocked = fmt.Errorf("%w: account locked", ErrForbidden)
	// ErrNoRoles is returned when a principal has an empty role set.
	ErrNoRoles = fmt.Errorf("%w: no roles assigned", ErrForbidden)
	// ErrRoleDomainMismatch is returned when the admission policy rejects
	// the principal's primary role for the presented domain class.
	ErrRoleDomainMismatch = fmt.Errorf("%w: role not allowed on this domain", ErrForbidden)
	// ErrPasswordRecheckFailed is returned when the password re-verification
	// gating a sensitive operation (disabling two-factor) does not pass.
	ErrPasswordRecheckFailed = fmt.Errorf("%w: password verification failed", ErrForbidden)

	// ErrTenantUnresolved is returned when a presented domain yields no tenant.
	ErrTenantUnresolved = fmt.Errorf("%w: tenant unresolved", ErrNotFound)
	// ErrUnknownPrincipal is returned by operations addressed to a principal
	// id that does not exist. Login never returns it; login failures stay
	// indistinguishable.
	ErrUnknownPrincipal = fmt.Errorf("%w: unknown principal", ErrNotFound)
	// ErrTenantRequired is returned when neither a domain nor a tenant id
	// was supplied to Login.
	ErrTenantRequired = fmt.Errorf("%w: domain or tenant id required", ErrValidation)

	// ErrTwoFactorNotConfigured is returned when an operation needs an
	// enrollment that does not exist.
	ErrTwoFactorNotConfigured = errors.New("two-factor not configured")
	// ErrEngineNotReady is returned when an Engine method is called before
	// Builder.Build wired the required collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Store-boundary sentinels. IdentityStore and TenantDirectory implementations
// return these; the Engine translates them into the classes above.
var (
	// ErrPrincipalNotFound is returned by IdentityStore lookups.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrTenantNotFound is returned by TenantDirectory lookups.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrRefreshConflict is returned by IdentityStore.RotateRefreshHash when
	// the expected hash no longer matches the stored one. Exactly one of two
	// concurrent rotations presenting the same token observes the
	// pre-rotation value; the other receives this error.
	ErrRefreshConflict = errors.New("refresh token conflict")
)
