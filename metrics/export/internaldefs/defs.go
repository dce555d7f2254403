// Package internaldefs holds the shared counter definitions used by the
// metric exporters. It exists so exporter packages agree on names without
// duplicating the table.
package internaldefs

import (
	"github.com/tripwell/tenauth"
)

// CounterDef ties a tenauth metric slot to its exported name.
type CounterDef struct {
	ID   tenauth.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter.
var CounterDefs = []CounterDef{
	{ID: tenauth.MetricLoginSuccess, Name: "tenauth_login_success_total", Help: "Successful login attempts."},
	{ID: tenauth.MetricLoginFailure, Name: "tenauth_login_failure_total", Help: "Failed login attempts."},
	{ID: tenauth.MetricLoginLocked, Name: "tenauth_login_locked_total", Help: "Login attempts rejected by an open lockout window."},
	{ID: tenauth.MetricLoginTwoFactorRequired, Name: "tenauth_login_twofactor_required_total", Help: "Login flows stopped pending a two-factor code."},
	{ID: tenauth.MetricRefreshSuccess, Name: "tenauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: tenauth.MetricRefreshFailure, Name: "tenauth_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: tenauth.MetricRefreshConflict, Name: "tenauth_refresh_conflict_total", Help: "Refresh rotations lost to a concurrent winner."},
	{ID: tenauth.MetricRevoke, Name: "tenauth_revoke_total", Help: "Refresh token revocations."},
	{ID: tenauth.MetricTokenValidateFailure, Name: "tenauth_token_validate_failure_total", Help: "Rejected access tokens."},
	{ID: tenauth.MetricTwoFactorSuccess, Name: "tenauth_twofactor_success_total", Help: "Successful TOTP verifications."},
	{ID: tenauth.MetricTwoFactorFailure, Name: "tenauth_twofactor_failure_total", Help: "Failed TOTP verifications."},
	{ID: tenauth.MetricTwoFactorEnabled, Name: "tenauth_twofactor_enabled_total", Help: "Enrollments confirmed and enabled."},
	{ID: tenauth.MetricTwoFactorDisabled, Name: "tenauth_twofactor_disabled_total", Help: "Enrollments disabled."},
	{ID: tenauth.MetricBackupCodeUsed, Name: "tenauth_backup_code_used_total", Help: "Successful backup-code authentications."},
	{ID: tenauth.MetricBackupCodeFailed, Name: "tenauth_backup_code_failed_total", Help: "Failed backup-code authentications."},
	{ID: tenauth.MetricBackupCodeRegenerated, Name: "tenauth_backup_code_regenerated_total", Help: "Backup-code regeneration operations."},
	{ID: tenauth.MetricTenantResolveHit, Name: "tenauth_tenant_resolve_hit_total", Help: "Domain resolutions that yielded a tenant."},
	{ID: tenauth.MetricTenantResolveMiss, Name: "tenauth_tenant_resolve_miss_total", Help: "Domain resolutions that yielded no tenant."},
}
