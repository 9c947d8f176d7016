// Package token issues and validates the stateless session token: a signed
// HS256 JWT carrying the user id, role and expiry. Tokens are never stored
// server-side; signature and expiry are the only checks.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/courtside/accounts-api/internal/core/domain"
)

// DefaultTTL applies when the codec is constructed with a non-positive TTL.
const DefaultTTL = 15 * time.Minute

// Claims is the decoded token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID   `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Codec signs and verifies session tokens. Issuance and validation are pure
// and safe for concurrent use; the key is read-only after construction.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodec builds a Codec. now may be nil, in which case time.Now is used;
// tests inject a fixed clock.
func NewCodec(key []byte, ttl time.Duration, now func() time.Time) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{key: key, ttl: ttl, now: now}
}

// Issue builds and signs a token for the given subject expiring at now+ttl.
func (c *Codec) Issue(userID uuid.UUID, role domain.Role) (string, error) {
	iat := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(c.ttl)),
		},
		UserID: userID,
		Role:   role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign auth token: %w", err)
	}
	return signed, nil
}

// DecodeAndValidate verifies the signature and expiry of an encoded token.
// Tampering and expiry both collapse into domain.ErrTokenInvalid so the
// client cannot tell a forged token from a stale one.
func (c *Codec) DecodeAndValidate(encoded string) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(encoded, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, domain.ErrTokenInvalid
	}
	if claims.UserID == uuid.Nil || !claims.Role.Valid() {
		return Claims{}, domain.ErrTokenInvalid
	}
	return claims, nil
}
