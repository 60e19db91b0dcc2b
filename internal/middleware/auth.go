package middleware

import (
	"strings"

	"github.com/anish3d/folio/internal/pkg/jwt"
	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const ContextKeySubject = "subject"

// RequireScope rejects requests without a valid bearer token carrying scope.
func RequireScope(signer *jwt.Signer, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" || signer == nil {
			response.Unauthorized(c)
			return
		}
		claims, err := signer.Parse(token)
		if err != nil || claims.Scope != scope {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// CurrentSubject returns the token subject set by RequireScope.
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	s, _ := v.(string)
	return s
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
