// Package jwt issues and validates the signed access tokens minted at login
// and refresh time. Tokens are HS256-signed, carry identity and role claims,
// and are validated statelessly with zero tolerance for clock skew.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Validation failure reasons. Callers translating these for an external
// surface must collapse them into a single unauthorized response; the split
// exists for audit records only.
var (
	ErrMalformed = errors.New("token malformed")
	ErrSignature = errors.New("token signature invalid")
	ErrExpired   = errors.New("token expired")
	ErrClaims    = errors.New("token claims invalid")
)

// Config fixes the signing key, issuer, audience, and lifetime for a
// deployment. None of these are derived at runtime.
type Config struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
}

// Manager mints and validates access tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// Claims is the access-token claim set. Subject carries the principal id;
// ID (jti) makes every token distinguishable even under identical claims.
type Claims struct {
	Email    string   `json:"email"`
	TenantID string   `json:"tid"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience required")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue mints a signed token expiring at now + AccessTTL.
func (m *Manager) Issue(principalID, email, tenantID string, roles []string, now time.Time) (string, error) {
	claims := Claims{
		Email:    email,
		TenantID: tenantID,
		Roles:    append([]string(nil), roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.SigningKey)
}

// Validate verifies signature, issuer, audience, and expiry against the
// supplied clock with zero leeway: a token expiring at exactly now is
// rejected. It never touches storage.
func (m *Manager) Validate(tokenStr string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.SigningKey, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrClaims
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrClaims
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrClaims
	}
}
