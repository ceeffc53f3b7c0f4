// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity. The chain core never
// authenticates; it only receives a user id and a display name, which
// Identity stores in the Gin context for handlers and for the rate limiter.
//
// Resolution order:
//  1. Authorization: Bearer <jwt>, verified with HS256 when a secret is set.
//     The id comes from the "sub" claim (or "user_id"), the name from "name".
//  2. X-User-ID / X-User-Name headers, trusted as-is (development mode,
//     or a gateway that already authenticated the user).
//
// A bearer token that fails verification is rejected with 401 rather than
// falling back to headers.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys written by Identity.
const (
	CtxUserID   = "userID"
	CtxUserName = "userName"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// IdentityOptions configures Identity.
type IdentityOptions struct {
	// Secret is the HS256 key for bearer tokens. Empty disables JWT.
	Secret string
	// Required rejects requests that resolve to no user.
	Required bool
}

// Identity returns a middleware that resolves the caller and stores
// CtxUserID / CtxUserName in the context.
func Identity(opts IdentityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id, name string

		if raw, ok := bearerToken(c.GetHeader("Authorization")); ok && opts.Secret != "" {
			claims, err := parseToken(raw, opts.Secret)
			if err != nil {
				abortUnauthorized(c, "invalid bearer token")
				return
			}
			id, name = claimString(claims, "sub", "user_id"), claimString(claims, "name")
			if id == "" {
				abortUnauthorized(c, "token has no subject")
				return
			}
		} else {
			id = strings.TrimSpace(c.GetHeader(HeaderUserID))
			name = strings.TrimSpace(c.GetHeader(HeaderUserName))
		}

		if id == "" && opts.Required {
			abortUnauthorized(c, "authentication required")
			return
		}
		if id != "" {
			c.Set(CtxUserID, id)
			c.Set(CtxUserName, name)
		}
		c.Next()
	}
}

// CurrentUser returns the identity stored by Identity.
func CurrentUser(c *gin.Context) (id, name string) {
	return c.GetString(CtxUserID), c.GetString(CtxUserName)
}

func bearerToken(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func parseToken(raw, secret string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// claimString returns the first non-empty string claim among keys.
func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
