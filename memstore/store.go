// Package memstore is an in-memory [tenauth.IdentityStore] with the same
// conditional-update guarantees a production store must provide. It backs
// the package tests and is suitable for prototypes and single-process
// tools; it is not durable.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tripwell/tenauth"
)

// Store keeps principals, enrollments, and activity rows behind one mutex.
// Every mutating method is a single critical section, which gives the
// per-principal read-modify-write atomicity tenauth requires.
type Store struct {
	mu          sync.Mutex
	principals  map[string]*tenauth.Principal
	enrollments map[string]*tenauth.TwoFactorEnrollment
	activity    []tenauth.TwoFactorActivityRecord
}

func New() *Store {
	return &Store{
		principals:  make(map[string]*tenauth.Principal),
		enrollments: make(map[string]*tenauth.TwoFactorEnrollment),
	}
}

// SeedPrincipal installs or replaces a principal record.
func (s *Store) SeedPrincipal(p tenauth.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[p.ID] = clonePrincipal(&p)
}

// GetPrincipalByEmailAndTenant implements tenauth.IdentityStore.
func (s *Store) GetPrincipalByEmailAndTenant(_ context.Context, email, tenantID string) (*tenauth.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	for _, p := range s.principals {
		if strings.ToLower(p.Email) == email && p.TenantID == tenantID {
			return clonePrincipal(p), nil
		}
	}
	return nil, tenauth.ErrPrincipalNotFound
}

// GetPrincipalByID implements tenauth.IdentityStore.
func (s *Store) GetPrincipalByID(_ context.Context, id string) (*tenauth.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, tenauth.ErrPrincipalNotFound
	}
	return clonePrincipal(p), nil
}

// SetRefreshHash implements tenauth.IdentityStore.
func (s *Store) SetRefreshHash(_ context.Context, principalID string, hash [32]byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[principalID]
	if !ok {
		return tenauth.ErrPrincipalNotFound
	}
	p.RefreshHash = hash
	p.RefreshExpiresAt = expiresAt
	return nil
}

// RotateRefreshHash implements tenauth.IdentityStore. The compare and the
// swap happen under one lock; a loser of the race observes the winner's
// value and fails with ErrRefreshConflict.
func (s *Store) RotateRefreshHash(_ context.Context, principalID string, expected, next [32]byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[principalID]
	if !ok {
		return tenauth.ErrPrincipalNotFound
	}
	if p.RefreshHash != expected {
		return tenauth.ErrRefreshConflict
	}
	p.RefreshHash = next
	p.RefreshExpiresAt = expiresAt
	return nil
}

// RecordLogin implements tenauth.IdentityStore.
func (s *Store) RecordLogin(_ context.Context, principalID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[principalID]
	if !ok {
		return tenauth.ErrPrincipalNotFound
	}
	stamp := at
	p.LastLoginAt = &stamp
	return nil
}

// RecordLoginFailure implements tenauth.IdentityStore.
func (s *Store) RecordLoginFailure(_ context.Context, principalID string, failures int, lockedUntil *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[principalID]
	if !ok {
		return tenauth.ErrPrincipalNotFound
	}
	p.FailedLogins = failures
	if lockedUntil != nil {
		stamp := *lockedUntil
		p.LockedUntil = &stamp
	} else {
		p.LockedUntil = nil
	}
	return nil
}

// GetTwoFactorEnrollment implements tenauth.IdentityStore.
func (s *Store) GetTwoFactorEnrollment(_ context.Context, principalID string) (*tenauth.TwoFactorEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, ok := s.enrollments[principalID]
	if !ok {
		return nil, nil
	}
	return cloneEnrollment(enrollment), nil
}

// UpsertTwoFactorEnrollment implements tenauth.IdentityStore.
func (s *Store) UpsertTwoFactorEnrollment(_ context.Context, enrollment *tenauth.TwoFactorEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enrollments[enrollment.PrincipalID] = cloneEnrollment(enrollment)
	return nil
}

// DeleteTwoFactorEnrollment implements tenauth.IdentityStore.
func (s *Store) DeleteTwoFactorEnrollment(_ context.Context, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.enrollments, principalID)
	return nil
}

// ConsumeBackupCode implements tenauth.IdentityStore. Lookup and removal
// are one critical section, so a code can be consumed at most once.
func (s *Store) ConsumeBackupCode(_ context.Context, principalID string, hash [32]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, ok := s.enrollments[principalID]
	if !ok {
		return false, nil
	}
	for i, record := range enrollment.BackupCodes {
		if record.Hash == hash {
			enrollment.BackupCodes = append(enrollment.BackupCodes[:i], enrollment.BackupCodes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// UpdateTwoFactorUsage implements tenauth.IdentityStore.
func (s *Store) UpdateTwoFactorUsage(_ context.Context, principalID string, step int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, ok := s.enrollments[principalID]
	if !ok {
		return nil
	}
	enrollment.LastUsedStep = step
	stamp := at
	enrollment.LastUsedAt = &stamp
	enrollment.UpdatedAt = at
	return nil
}

// AppendTwoFactorActivity implements tenauth.IdentityStore.
func (s *Store) AppendTwoFactorActivity(_ context.Context, record tenauth.TwoFactorActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activity = append(s.activity, record)
	return nil
}

// Activity returns a copy of the append-only activity log.
func (s *Store) Activity() []tenauth.TwoFactorActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]tenauth.TwoFactorActivityRecord(nil), s.activity...)
}

// Principal returns a copy of the stored record, for assertions.
func (s *Store) Principal(id string) (*tenauth.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, false
	}
	return clonePrincipal(p), true
}

func clonePrincipal(p *tenauth.Principal) *tenauth.Principal {
	out := *p
	out.Roles = append([]string(nil), p.Roles...)
	if p.LockedUntil != nil {
		stamp := *p.LockedUntil
		out.LockedUntil = &stamp
	}
	if p.LastLoginAt != nil {
		stamp := *p.LastLoginAt
		out.LastLoginAt = &stamp
	}
	return &out
}

func cloneEnrollment(e *tenauth.TwoFactorEnrollment) *tenauth.TwoFactorEnrollment {
	out := *e
	out.Secret = append([]byte(nil), e.Secret...)
	out.PendingSecret = append([]byte(nil), e.PendingSecret...)
	out.BackupCodes = append([]tenauth.BackupCodeRecord(nil), e.BackupCodes...)
	out.PendingBackupCodes = append([]tenauth.BackupCodeRecord(nil), e.PendingBackupCodes...)
	if e.LastUsedAt != nil {
		stamp := *e.LastUsedAt
		out.LastUsedAt = &stamp
	}
	return &out
}
