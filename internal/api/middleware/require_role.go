package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/fluentspeak/internal/utils"
)

// Context keys set by JWTAuth.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func normalizeRole(r string) string { return strings.ToLower(strings.TrimSpace(r)) }

// RequireRole must run after JWTAuth. Scenario authoring is the only
// admin-gated surface today.
func RequireRole(allowed ...string) gin.HandlerFunc {
	allow := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if a = normalizeRole(a); a != "" {
			allow = append(allow, a)
		}
	}

	return func(c *gin.Context) {
		if c.GetString(UserIDKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "unauthorized",
			})
			return
		}

		if role := c.GetString(RoleKey); role == "" || !slices.Contains(allow, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "forbidden",
			})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(RoleAdmin) }
