// Package tenauth is the multi-tenant authentication core: signed access
// tokens, rotating opaque refresh tokens, TOTP two-factor auth with
// single-use backup codes, domain-to-tenant resolution, and role-vs-domain
// admission policy.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tenauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [IdentityStore] and [TenantDirectory] collaborator interfaces, and
// value types (Session, Profile, TwoFactorSetup, SecurityReport). Audit
// dispatch, metric storage, and random-material helpers live under internal/
// and are never exported.
//
// # What this package must NOT do
//
//   - Own persistence. Principals and enrollments are read and written
//     through [IdentityStore]; all per-principal serialization relies on
//     that store's conditional-update primitives.
//   - Surface the specific reason a credential check failed. Callers see
//     the four error classes ([ErrValidation], [ErrNotFound],
//     [ErrUnauthorized], [ErrForbidden]); audit records carry the detail.
//   - Route HTTP or render QR codes. middleware/ holds the one bearer-token
//     guard; everything else is the host application's concern.
//
// # Performance contract
//
// Validate is the hot path. It is a pure, storage-free signature and claims
// check. Login, Refresh, and the two-factor operations are allowed one
// identity-store round-trip per step, plus one tenant-directory lookup when
// a domain is presented.
package tenauth
