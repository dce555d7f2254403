package tenauth

import (
	"context"
	"errors"

	"github.com/tripwell/tenauth/internal"
)

// GenerateTwoFactorSetup creates a fresh shared secret and backup-code set
// for the principal and stores them as pending. A previously enabled secret
// keeps satisfying challenges until [Engine.ConfirmTwoFactorSetup]
// promotes the pending pair. The plaintext backup codes are returned here
// exactly once; only their hashes are stored.
func (e *Engine) GenerateTwoFactorSetup(ctx context.Context, principalID string) (*TwoFactorSetup, error) {
	if e == nil || e.store == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}

	principal, err := e.fetchPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !principal.Active {
		return nil, ErrAccountInactive
	}

	secretRaw, secretBase32, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	codes, err := internal.NewBackupCodes(e.config.TOTP.BackupCodeCount, e.config.TOTP.BackupCodeLength)
	if err != nil {
		return nil, err
	}

	now := e.now()
	enrollment, err := e.store.GetTwoFactorEnrollment(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		enrollment = &TwoFactorEnrollment{
			PrincipalID: principal.ID,
			CreatedAt:   now,
		}
	}
	enrollment.PendingSecret = secretRaw
	enrollment.PendingBackupCodes = hashBackupCodes(codes)
	enrollment.UpdatedAt = now

	if err := e.store.UpsertTwoFactorEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventTwoFactorSetup, true, principal.ID, principal.TenantID, nil, nil)
	return &TwoFactorSetup{
		SecretBase32:    secretBase32,
		ProvisioningURI: e.totp.ProvisionURI(secretBase32, principal.Email),
		BackupCodes:     codes,
	}, nil
}

// ConfirmTwoFactorSetup verifies code against the pending secret and, on
// success, promotes the pending secret and backup codes to authoritative
// and flips the enrollment to enabled. A failed code leaves the enrollment
// untouched.
func (e *Engine) ConfirmTwoFactorSetup(ctx context.Context, principalID, code string) error {
	if e == nil || e.store == nil || e.totp == nil {
		return ErrEngineNotReady
	}

	principal, err := e.fetchPrincipal(ctx, principalID)
	if err != nil {
		return err
	}

	enrollment, err := e.store.GetTwoFactorEnrollment(ctx, principal.ID)
	if err != nil {
		return err
	}
	if enrollment == nil || len(enrollment.PendingSecret) == 0 {
		return ErrTwoFactorNotConfigured
	}

	now := e.now()
	ok, step, err := e.totp.VerifyCode(enrollment.PendingSecret, code, now)
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricTwoFactorFailure)
		e.appendActivity(ctx, principal.ID, TwoFactorFailed, false)
		e.emitAudit(ctx, auditEventTwoFactorFailed, false, principal.ID, principal.TenantID, ErrTwoFactorInvalid, nil)
		return ErrTwoFactorInvalid
	}

	enrollment.Secret = enrollment.PendingSecret
	enrollment.BackupCodes = enrollment.PendingBackupCodes
	enrollment.PendingSecret = nil
	enrollment.PendingBackupCodes = nil
	enrollment.Enabled = true
	enrollment.LastUsedStep = step
	enrollment.UpdatedAt = now
	enrollment.LastUsedAt = &now

	if err := e.store.UpsertTwoFactorEnrollment(ctx, enrollment); err != nil {
		return err
	}

	e.metricInc(MetricTwoFactorEnabled)
	e.appendActivity(ctx, principal.ID, TwoFactorEnabled, true)
	e.emitAudit(ctx, auditEventTwoFactorEnabled, true, principal.ID, principal.TenantID, nil, nil)
	return nil
}

// VerifyTwoFactor checks a TOTP code or backup code against the principal's
// enabled enrollment. Backup codes are consumed atomically: of two
// concurrent attempts with the same code, at most one succeeds.
func (e *Engine) VerifyTwoFactor(ctx context.Context, principalID, code string, useBackupCode bool) error {
	if e == nil || e.store == nil || e.totp == nil {
		return ErrEngineNotReady
	}

	principal, err := e.fetchPrincipal(ctx, principalID)
	if err != nil {
		return err
	}

	enrollment, err := e.store.GetTwoFactorEnrollment(ctx, principal.ID)
	if err != nil {
		return err
	}

	if err := e.twoFactorAuthenticate(ctx, principal.ID, enrollment, code, useBackupCode); err != nil {
		e.emitAudit(ctx, auditEventTwoFactorFailed, false, principal.ID, principal.TenantID, err, nil)
		return err
	}

	event := auditEventTwoFactorVerified
	if useBackupCode {
		event = auditEventBackupCodeUsed
	}
	e.emitAudit(ctx, event, true, principal.ID, principal.TenantID, nil, nil)
	return nil
}

// DisableTwoFactor clears the enrollment after re-verifying the current
// password. A failed password check disables nothing.
func (e *Engine) DisableTwoFactor(ctx context.Context, principalID, password string) error {
	if e == nil || e.store == nil || e.passwords == nil {
		return ErrEngineNotReady
	}

	principal, err := e.fetchPrincipal(ctx, principalID)
	if err != nil {
		return err
	}

	ok, err := e.passwords.Verify(password, principal.PasswordHash)
	if err != nil || !ok {
		e.appendActivity(ctx, principal.ID, TwoFactorFailed, false)
		e.emitAudit(ctx, auditEventTwoFactorDisabled, false, principal.ID, principal.TenantID, ErrPasswordRecheckFailed, nil)
		return ErrPasswordRecheckFailed
	}

	enrollment, err := e.store.GetTwoFactorEnrollment(ctx, principal.ID)
	if err != nil {
		return err
	}
	if enrollment == nil {
		return ErrTwoFactorNotConfigured
	}

	if err := e.store.DeleteTwoFactorEnrollment(ctx, principal.ID); err != nil {
		return err
	}

	e.metricInc(MetricTwoFactorDisabled)
	e.appendActivity(ctx, principal.ID, TwoFactorDisabled, true)
	e.emitAudit(ctx, auditEventTwoFactorDisabled, true, principal.ID, principal.TenantID, nil, nil)
	return nil
}

// RegenerateBackupCodes invalidates all remaining backup codes and issues a
// fresh set. A valid current TOTP code is required; backup codes cannot
// gate their own regeneration.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, principalID, totpCode string) ([]string, error) {
	if e == nil || e.store == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}

	principal, err := e.fetchPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}

	enrollment, err := e.store.GetTwoFactorEnrollment(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if err := e.twoFactorAuthenticate(ctx, principal.ID, enrollment, totpCode, false); err != nil {
		e.emitAudit(ctx, auditEventBackupCodesRenewed, false, principal.ID, principal.TenantID, err, nil)
		return nil, err
	}

	codes, err := internal.NewBackupCodes(e.config.TOTP.BackupCodeCount, e.config.TOTP.BackupCodeLength)
	if err != nil {
		return nil, err
	}

	enrollment.BackupCodes = hashBackupCodes(codes)
	enrollment.UpdatedAt = e.now()
	if err := e.store.UpsertTwoFactorEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	e.metricInc(MetricBackupCodeRegenerated)
	e.emitAudit(ctx, auditEventBackupCodesRenewed, true, principal.ID, principal.TenantID, nil, nil)
	return codes, nil
}

// twoFactorAuthenticate is the shared challenge check behind Login,
// VerifyTwoFactor, and RegenerateBackupCodes. It requires an enabled
// enrollment: a pending secret never satisfies a challenge.
func (e *Engine) twoFactorAuthenticate(ctx context.Context, principalID string, enrollment *TwoFactorEnrollment, code string, useBackupCode bool) error {
	if enrollment == nil || !enrollment.Enabled {
		return ErrTwoFactorNotConfigured
	}

	if useBackupCode {
		consumed, err := e.store.ConsumeBackupCode(ctx, principalID, internal.HashBackupCode(code))
		if err != nil {
			return err
		}
		if !consumed {
			e.metricInc(MetricBackupCodeFailed)
			e.appendActivity(ctx, principalID, TwoFactorFailed, false)
			return ErrTwoFactorInvalid
		}
		e.metricInc(MetricBackupCodeUsed)
		e.appendActivity(ctx, principalID, TwoFactorBackupUsed, true)
		return nil
	}

	now := e.now()
	ok, step, err := e.totp.VerifyCode(enrollment.Secret, code, now)
	if err != nil {
		return err
	}
	// A step at or before the last accepted one is a replay, even when the
	// code itself is arithmetically valid inside the skew window.
	if !ok || step <= enrollment.LastUsedStep {
		e.metricInc(MetricTwoFactorFailure)
		e.appendActivity(ctx, principalID, TwoFactorFailed, false)
		return ErrTwoFactorInvalid
	}

	if err := e.store.UpdateTwoFactorUsage(ctx, principalID, step, now); err != nil {
		return err
	}
	enrollment.LastUsedStep = step
	enrollment.LastUsedAt = &now

	e.metricInc(MetricTwoFactorSuccess)
	e.appendActivity(ctx, principalID, TwoFactorVerified, true)
	return nil
}

func (e *Engine) fetchPrincipal(ctx context.Context, principalID string) (*Principal, error) {
	if principalID == "" {
		return nil, ErrUnknownPrincipal
	}
	principal, err := e.store.GetPrincipalByID(ctx, principalID)
	if err != nil || principal == nil {
		if err == nil || errors.Is(err, ErrPrincipalNotFound) {
			return nil, ErrUnknownPrincipal
		}
		return nil, err
	}
	return principal, nil
}

func hashBackupCodes(codes []string) []BackupCodeRecord {
	records := make([]BackupCodeRecord, 0, len(codes))
	for _, code := range codes {
		records = append(records, BackupCodeRecord{Hash: internal.HashBackupCode(code)})
	}
	return records
}
