package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	apperrors "github.com/gtedge/aegis/internal/errors"
)

// tokenClaims is the JWT payload: registered claims plus the identity,
// tenant scope, capability set, and its integrity hash.
type tokenClaims struct {
	jwt.RegisteredClaims
	TenantID       *uuid.UUID                `json:"tenant_id,omitempty"`
	UserType       authzDomain.UserType      `json:"user_type"`
	SessionID      uuid.UUID                 `json:"session_id"`
	Capabilities   authzDomain.CapabilitySet `json:"capabilities"`
	CapabilityHash string                    `json:"capability_hash"`
}

// jwtTokenService implements TokenService using HMAC-SHA256 signed JWTs.
type jwtTokenService struct {
	signingKey []byte
	issuer     string
	hasher     CapabilityHasher
}

// NewTokenService creates a TokenService that signs compact three-part
// tokens (header/payload/signature) with HS256. The capability hash embedded
// in every token is computed with the provided hasher at issuance and
// re-checked at verification.
func NewTokenService(signingKey []byte, issuer string, hasher CapabilityHasher) (TokenService, error) {
	if len(signingKey) < 32 {
		return nil, apperrors.New("token signing key must be at least 32 bytes")
	}
	return &jwtTokenService{
		signingKey: signingKey,
		issuer:     issuer,
		hasher:     hasher,
	}, nil
}

// Issue signs the claims and returns the compact token string. ExpiresAt
// must be supplied by the caller from the session policy; a zero expiry is
// rejected rather than silently defaulted.
func (t *jwtTokenService) Issue(claims *authzDomain.IdentityClaims) (string, error) {
	if claims.ExpiresAt.IsZero() {
		return "", apperrors.New("token expiry must be set by the caller")
	}

	capabilityHash, err := t.hasher.Hash(claims.Capabilities)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash capability set")
	}

	payload := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		TenantID:       claims.TenantID,
		UserType:       claims.UserType,
		SessionID:      claims.SessionID,
		Capabilities:   claims.Capabilities,
		CapabilityHash: capabilityHash,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Verify validates the signature and expiry against now, then recomputes the
// capability hash from the embedded set. Signature tampering is caught by
// standard verification; capability-list tampering that somehow bypassed the
// signature is caught by the hash check.
func (t *jwtTokenService) Verify(token string, now time.Time) (*authzDomain.IdentityClaims, error) {
	payload := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, payload, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !parsed.Valid {
		return nil, authzDomain.ErrTokenTampered
	}

	if !t.hasher.Verify(payload.Capabilities, payload.CapabilityHash) {
		return nil, apperrors.Wrap(authzDomain.ErrTokenTampered, "capability hash mismatch")
	}

	claims := &authzDomain.IdentityClaims{
		Subject:        payload.Subject,
		TenantID:       payload.TenantID,
		UserType:       payload.UserType,
		SessionID:      payload.SessionID,
		Capabilities:   payload.Capabilities,
		CapabilityHash: payload.CapabilityHash,
	}
	if payload.IssuedAt != nil {
		claims.IssuedAt = payload.IssuedAt.Time
	}
	if payload.ExpiresAt != nil {
		claims.ExpiresAt = payload.ExpiresAt.Time
	}
	return claims, nil
}

// keyFunc supplies the HMAC key during parsing.
func (t *jwtTokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	return t.signingKey, nil
}

// mapJWTError maps parser failures onto the domain rejection taxonomy:
// expired, tampered (signature), or malformed.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(authzDomain.ErrTokenExpired, err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(authzDomain.ErrTokenTampered, "signature mismatch")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return apperrors.Wrap(authzDomain.ErrTokenMalformed, err.Error())
	default:
		// Unknown issuer, wrong signing method, future iat, and other
		// validation failures are not distinguishable to callers.
		return apperrors.Wrap(authzDomain.ErrTokenMalformed, err.Error())
	}
}
