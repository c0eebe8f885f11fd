package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BearerToken is a per-session credential issued at signup and login. The
// Raw field is the signed HS256 JWT handed to the client; only the SHA-256
// hash of it is stored server-side, so a leaked api_tokens table cannot be
// replayed. Exp is the UTC expiration time.
type BearerToken struct {
	Raw string
	Exp time.Time
}

// ErrTokenInvalid is returned when a presented token fails signature or
// claim checks.
var ErrTokenInvalid = errors.New("token invalid")

// NewBearerToken builds and signs a session token for a user. Claims: sub
// (user ID), jti (random session ID so tokens issued in the same second
// still differ), iat and exp. ttlDays controls the lifetime.
func NewBearerToken(secret string, userID uint64, ttlDays int) (BearerToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return BearerToken{}, err
	}
	return BearerToken{Raw: signed, Exp: exp}, nil
}

// ParseBearerToken verifies the signature and expiry of a raw token and
// returns the subject user ID. It does not consult the token store; callers
// must additionally check that the token has not been revoked.
func ParseBearerToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrTokenInvalid
	}
	return uint64(sub), nil
}

// HashTokenRaw returns the SHA-256 hash of the raw token as a hex string.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
