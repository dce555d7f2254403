package tenauth

import (
	"context"
	"time"

	internalaudit "github.com/tripwell/tenauth/internal/audit"
	"github.com/tripwell/tenauth/jwt"
	"github.com/tripwell/tenauth/password"
)

// Engine composes the authentication core: credential verification, token
// issuance and validation, refresh rotation, two-factor management, tenant
// resolution, and admission policy. Construct through [Builder.Build];
// treat as immutable afterwards.
type Engine struct {
	config    Config
	store     IdentityStore
	resolver  *DomainResolver
	tokens    *jwt.Manager
	passwords *password.Argon2
	totp      *totpManager
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	events    EventPublisher
	now       func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Validate checks an access token's signature, issuer, audience, and expiry
// against the engine clock. It is pure: no storage round-trip, no
// synchronization. All failures surface as [ErrTokenInvalid]; the specific
// reason goes to the audit stream only.
func (e *Engine) Validate(ctx context.Context, token string) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Validate(token, e.now())
	if err != nil {
		e.metricInc(MetricTokenValidateFailure)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", "", err, nil)
		return nil, ErrTokenInvalid
	}

	return &AuthResult{
		PrincipalID: claims.Subject,
		TenantID:    claims.TenantID,
		Email:       claims.Email,
		TokenID:     claims.ID,
		Roles:       claims.Roles,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// IsMainDomain reports whether domain belongs to the platform itself.
func (e *Engine) IsMainDomain(domain string) bool {
	if e == nil || e.resolver == nil {
		return false
	}
	return e.resolver.IsMainDomain(domain)
}

// ResolveTenantID resolves a domain to a tenant identifier.
func (e *Engine) ResolveTenantID(ctx context.Context, domain string) (string, bool) {
	if e == nil || e.resolver == nil {
		return "", false
	}
	tenantID, ok := e.resolver.ResolveTenantID(ctx, domain)
	if ok {
		e.metricInc(MetricTenantResolveHit)
	} else {
		e.metricInc(MetricTenantResolveMiss)
	}
	return tenantID, ok
}

// MetricsSnapshot returns a copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under pressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, action string, success bool, principalID, tenantID string, failure error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:   e.now(),
		Action:      action,
		PrincipalID: principalID,
		TenantID:    tenantID,
		IP:          clientIPFromContext(ctx),
		Success:     success,
		Metadata:    metadata,
	}
	if failure != nil {
		event.Error = failure.Error()
	}

	e.audit.Emit(ctx, event)
}

// appendActivity writes the append-only two-factor audit row. Store errors
// are swallowed: activity logging must not fail the authentication path.
func (e *Engine) appendActivity(ctx context.Context, principalID string, action TwoFactorAction, success bool) {
	if e == nil || e.store == nil {
		return
	}
	_ = e.store.AppendTwoFactorActivity(ctx, TwoFactorActivityRecord{
		PrincipalID: principalID,
		Action:      action,
		Success:     success,
		At:          e.now(),
		IP:          clientIPFromContext(ctx),
	})
}

func (e *Engine) publishLogin(ctx context.Context, principalID, tenantID string) {
	if e == nil || e.events == nil {
		return
	}
	e.events.PublishLogin(ctx, LoginEvent{
		PrincipalID: principalID,
		TenantID:    tenantID,
		At:          e.now(),
	})
}
