package tenauth

import internalmetrics "github.com/tripwell/tenauth/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess           = internalmetrics.MetricLoginSuccess
	MetricLoginFailure           = internalmetrics.MetricLoginFailure
	MetricLoginLocked            = internalmetrics.MetricLoginLocked
	MetricLoginTwoFactorRequired = internalmetrics.MetricLoginTwoFactorRequired
	MetricRefreshSuccess         = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure         = internalmetrics.MetricRefreshFailure
	MetricRefreshConflict        = internalmetrics.MetricRefreshConflict
	MetricRevoke                 = internalmetrics.MetricRevoke
	MetricTokenValidateFailure   = internalmetrics.MetricTokenValidateFailure
	MetricTwoFactorSuccess       = internalmetrics.MetricTwoFactorSuccess
	MetricTwoFactorFailure       = internalmetrics.MetricTwoFactorFailure
	MetricTwoFactorEnabled       = internalmetrics.MetricTwoFactorEnabled
	MetricTwoFactorDisabled      = internalmetrics.MetricTwoFactorDisabled
	MetricBackupCodeUsed         = internalmetrics.MetricBackupCodeUsed
	MetricBackupCodeFailed       = internalmetrics.MetricBackupCodeFailed
	MetricBackupCodeRegenerated  = internalmetrics.MetricBackupCodeRegenerated
	MetricTenantResolveHit       = internalmetrics.MetricTenantResolveHit
	MetricTenantResolveMiss      = internalmetrics.MetricTenantResolveMiss
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
