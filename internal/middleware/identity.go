package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = contextKey("identity")

// Identity carries the acting caller's details used for audit stamping and
// report date-boundary math. It is supplied by the hosting platform's token,
// not owned by this service.
type Identity struct {
	Username       string
	TimezoneOffset int // Hours east of UTC
}

// DefaultIdentity is used when a request carries no identity, e.g. internal jobs.
var DefaultIdentity = Identity{Username: "system", TimezoneOffset: 0}

// identityClaims are the token claims this service reads.
type identityClaims struct {
	Username       string `json:"username"`
	TimezoneOffset int    `json:"timezoneOffset"`
	jwt.RegisteredClaims
}

// IdentityMiddleware parses the bearer token and stores the caller's identity
// in the request context. Requests without a valid token are rejected.
func IdentityMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed authorization header"})
			return
		}

		claims := &identityClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Invalid bearer token", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		identity := Identity{
			Username:       claims.Username,
			TimezoneOffset: claims.TimezoneOffset,
		}
		if identity.Username == "" {
			identity.Username = claims.Subject
		}

		ctx := context.WithValue(c.Request.Context(), identityKey, identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetIdentityFromCtx retrieves the caller identity from the context,
// falling back to DefaultIdentity when absent.
func GetIdentityFromCtx(ctx context.Context) Identity {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return DefaultIdentity
	}
	return identity
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and internal callers that bypass the HTTP middleware.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
