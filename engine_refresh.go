package tenauth

import (
	"context"
	"errors"

	"github.com/tripwell/tenauth/internal"
)

// Refresh validates and rotates the presented refresh token, then mints a
// fresh access token with the principal's current roles (not the roles at
// original login time). The rotation is a compare-and-swap against the
// stored hash: of two concurrent calls presenting the same token, exactly
// one wins; the loser fails with [ErrUnauthorized].
func (e *Engine) Refresh(ctx context.Context, principalID, refreshToken string) (*Session, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	principal, err := e.store.GetPrincipalByID(ctx, principalID)
	if err != nil || principal == nil {
		if err == nil || errors.Is(err, ErrPrincipalNotFound) {
			return nil, ErrUnknownPrincipal
		}
		return nil, err
	}

	now := e.now()

	presented, err := internal.DecodeRefreshToken(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, principal.ID, principal.TenantID, ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	var zero [32]byte
	if principal.RefreshHash == zero || principal.RefreshExpiresAt.IsZero() || !principal.RefreshExpiresAt.After(now) {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, principal.ID, principal.TenantID, ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	if !principal.Active {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, principal.ID, principal.TenantID, ErrAccountInactive, nil)
		return nil, ErrAccountInactive
	}
	if len(principal.Roles) == 0 {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, principal.ID, principal.TenantID, ErrNoRoles, nil)
		return nil, ErrNoRoles
	}

	next, err := internal.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(e.config.Refresh.TTL)

	err = e.store.RotateRefreshHash(
		ctx,
		principal.ID,
		internal.HashRefreshSecret(presented),
		internal.HashRefreshSecret(next),
		expiresAt,
	)
	if err != nil {
		if errors.Is(err, ErrRefreshConflict) {
			e.metricInc(MetricRefreshConflict)
			e.emitAudit(ctx, auditEventRefresh, false, principal.ID, principal.TenantID, ErrRefreshConflict, nil)
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	access, err := e.tokens.Issue(principal.ID, principal.Email, principal.TenantID, principal.Roles, now)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, true, principal.ID, principal.TenantID, nil, nil)
	return &Session{
		AccessToken:      access,
		RefreshToken:     internal.EncodeRefreshToken(next),
		RefreshExpiresAt: expiresAt,
		Profile: Profile{
			ID:       principal.ID,
			TenantID: principal.TenantID,
			Email:    principal.Email,
			Name:     principal.Name,
			Roles:    append([]string(nil), principal.Roles...),
		},
	}, nil
}

// Revoke clears the stored refresh token, making any future rotation fail.
// Revoking an already-revoked session succeeds silently.
func (e *Engine) Revoke(ctx context.Context, principalID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	principal, err := e.store.GetPrincipalByID(ctx, principalID)
	if err != nil || principal == nil {
		if err == nil || errors.Is(err, ErrPrincipalNotFound) {
			return ErrUnknownPrincipal
		}
		return err
	}

	// Hash and expiry are cleared together: zero hash, already-expired
	// stamp.
	var zero [32]byte
	if err := e.store.SetRefreshHash(ctx, principal.ID, zero, e.now()); err != nil {
		return err
	}

	e.metricInc(MetricRevoke)
	e.emitAudit(ctx, auditEventRevoke, true, principal.ID, principal.TenantID, nil, nil)
	return nil
}
