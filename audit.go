package tenauth

import (
	"io"

	internalaudit "github.com/tripwell/tenauth/internal/audit"
)

// AuditEvent is a structured audit record emitted by the engine. Two-factor
// activity is additionally appended to the identity store as
// [TwoFactorActivityRecord]; the sink stream is for operational visibility
// and carries the specific failure reasons the API surface hides.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's async dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Audit event names emitted by the engine.
const (
	auditEventLogin              = "login"
	auditEventLoginLocked        = "login_locked"
	auditEventRefresh            = "refresh"
	auditEventRevoke             = "revoke"
	auditEventTokenRejected      = "token_rejected"
	auditEventTwoFactorSetup     = "twofactor_setup"
	auditEventTwoFactorEnabled   = "twofactor_enabled"
	auditEventTwoFactorDisabled  = "twofactor_disabled"
	auditEventTwoFactorVerified  = "twofactor_verified"
	auditEventTwoFactorFailed    = "twofactor_failed"
	auditEventBackupCodeUsed     = "backup_code_used"
	auditEventBackupCodesRenewed = "backup_codes_regenerated"
)
