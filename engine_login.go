package tenauth

import (
	"context"
	"strings"
	"time"

	"github.com/tripwell/tenauth/internal"
)

// LoginRequest carries one login attempt. Either Domain or TenantID must be
// present. TwoFactorCode is consulted only when the principal has an
// enabled enrollment.
type LoginRequest struct {
	Email    string
	Password string

	// Domain is the inbound domain or subdomain, when known. A main domain
	// maps to the reserved system tenant; anything else must resolve
	// through the tenant directory.
	Domain string

	// TenantID is the explicit tenant, used when no Domain is presented.
	TenantID string

	TwoFactorCode string
	UseBackupCode bool
}

// Login runs the full flow: tenant resolution, credential verification,
// admission policy, the optional two-factor challenge, then token issuance.
// All credential failures surface as [ErrUnauthorized]-class errors that do
// not reveal which check failed.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if e == nil || e.store == nil || e.passwords == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrValidation
	}

	domain := strings.TrimSpace(req.Domain)
	domainSupplied := domain != ""
	isMain := domainSupplied && e.resolver.IsMainDomain(domain)

	tenantID, err := e.effectiveTenant(ctx, domain, isMain, req.TenantID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, "", "", err, map[string]string{"email": email})
		return nil, err
	}

	principal, err := e.store.GetPrincipalByEmailAndTenant(ctx, email, tenantID)
	if err != nil || principal == nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, "", tenantID, ErrInvalidCredentials, map[string]string{"email": email})
		return nil, ErrInvalidCredentials
	}

	now := e.now()
	if principal.Locked(now) {
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLoginLocked, false, principal.ID, tenantID, ErrAccountLocked, nil)
		return nil, ErrAccountLocked
	}

	ok, err := e.passwords.Verify(req.Password, principal.PasswordHash)
	if err != nil || !ok {
		e.recordFailedLogin(ctx, principal, now)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, principal.ID, tenantID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if !principal.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, principal.ID, tenantID, ErrAccountInactive, nil)
		return nil, ErrAccountInactive
	}
	if len(principal.Roles) == 0 {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, principal.ID, tenantID, ErrNoRoles, nil)
		return nil, ErrNoRoles
	}
	if domainSupplied && !RoleAllowedOnDomain(principal.PrimaryRole(), isMain) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, principal.ID, tenantID, ErrRoleDomainMismatch, map[string]string{"role": principal.PrimaryRole()})
		return nil, ErrRoleDomainMismatch
	}

	enrollment, err := e.store.GetTwoFactorEnrollment(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if enrollment != nil && enrollment.Enabled {
		if req.TwoFactorCode == "" {
			e.metricInc(MetricLoginTwoFactorRequired)
			e.emitAudit(ctx, auditEventLogin, false, principal.ID, tenantID, ErrTwoFactorRequired, nil)
			return nil, ErrTwoFactorRequired
		}
		if err := e.twoFactorAuthenticate(ctx, principal.ID, enrollment, req.TwoFactorCode, req.UseBackupCode); err != nil {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, false, principal.ID, tenantID, err, nil)
			return nil, err
		}
	}

	if principal.FailedLogins > 0 || principal.LockedUntil != nil {
		// Counter reset is best-effort; a stale counter only shortens the
		// distance to the next lockout.
		_ = e.store.RecordLoginFailure(ctx, principal.ID, 0, nil)
	}

	session, err := e.issueSession(ctx, principal, now)
	if err != nil {
		return nil, err
	}

	if err := e.store.RecordLogin(ctx, principal.ID, now); err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, principal.ID, tenantID, nil, nil)
	e.publishLogin(ctx, principal.ID, tenantID)
	return session, nil
}

// effectiveTenant picks the tenant for the attempt. A main domain maps to
// the reserved system tenant; any other domain must resolve through the
// directory; without a domain the explicit tenant id is required.
func (e *Engine) effectiveTenant(ctx context.Context, domain string, isMain bool, explicit string) (string, error) {
	switch {
	case isMain:
		return e.config.Domain.SystemTenantID, nil
	case domain != "":
		tenantID, ok := e.ResolveTenantID(ctx, domain)
		if !ok {
			return "", ErrTenantUnresolved
		}
		return tenantID, nil
	default:
		explicit = strings.TrimSpace(explicit)
		if explicit == "" {
			return "", ErrTenantRequired
		}
		return explicit, nil
	}
}

func (e *Engine) recordFailedLogin(ctx context.Context, principal *Principal, now time.Time) {
	if !e.config.Lockout.Enabled {
		return
	}

	failures := principal.FailedLogins + 1
	var lockedUntil *time.Time
	if failures >= e.config.Lockout.Threshold {
		until := now.Add(e.config.Lockout.Duration)
		lockedUntil = &until
		failures = 0
	}

	// Best-effort: a lost increment weakens lockout, it never locks out a
	// legitimate principal.
	_ = e.store.RecordLoginFailure(ctx, principal.ID, failures, lockedUntil)
}

// issueSession mints the access token and installs a fresh refresh token on
// the principal.
func (e *Engine) issueSession(ctx context.Context, principal *Principal, now time.Time) (*Session, error) {
	access, err := e.tokens.Issue(principal.ID, principal.Email, principal.TenantID, principal.Roles, now)
	if err != nil {
		return nil, err
	}

	secret, err := internal.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(e.config.Refresh.TTL)
	if err := e.store.SetRefreshHash(ctx, principal.ID, internal.HashRefreshSecret(secret), expiresAt); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:      access,
		RefreshToken:     internal.EncodeRefreshToken(secret),
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
