package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"checkspot/internal/repository"
	"checkspot/internal/utils"
)

// Context keys set by BearerAuth for downstream handlers.
const (
	ctxUserID    = "user_id"
	ctxTokenHash = "token_hash"
)

// BearerAuth returns an Echo middleware that authenticates requests via an
// `Authorization: Bearer <token>` header. The token's signature and expiry
// are verified first, then its hash must resolve to a live, unrevoked
// session row. Every failure mode (missing header, malformed token, unknown
// or revoked session) yields the same 401 body so callers learn nothing
// about which check tripped.
func BearerAuth(secret string, tokens *repository.TokenRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthenticated(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			if _, err := utils.ParseBearerToken(secret, raw); err != nil {
				return unauthenticated(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			hash := utils.HashTokenRaw(raw)
			uid, err := tokens.Lookup(ctx, hash)
			if err != nil {
				return unauthenticated(c)
			}

			c.Set(ctxUserID, uid)
			c.Set(ctxTokenHash, hash)
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthenticated"})
}

// UserID returns the authenticated user's ID stored by BearerAuth, or zero
// when the request is unauthenticated.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxUserID).(uint64); ok {
		return v
	}
	return 0
}

// TokenHash returns the hash of the presented bearer token, for revocation.
func TokenHash(c echo.Context) string {
	if v, ok := c.Get(ctxTokenHash).(string); ok {
		return v
	}
	return ""
}
