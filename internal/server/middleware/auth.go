package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"materiaux-pro/internal/auth"
)

const identityKey = "identity"

// SessionCookie is the cookie the session token travels in when the
// client does not use the Authorization header.
const SessionCookie = "session_token"

// TokenFromRequest extracts the session token from the Authorization
// header or, failing that, the session cookie. Empty string when neither
// is present.
func TokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Authenticate resolves the request's session, if any, and stores the
// identity in the context. It never aborts; RequireRole decides access.
func Authenticate(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := sessions.Resolve(c.Request.Context(), token)
		if err == nil && identity != nil {
			c.Set(identityKey, *identity)
		}
		c.Next()
	}
}

// RequireRole aborts with 401 when the request carries no identity and
// 403 when the identity's role does not allow the group. Admin passes
// every role gate.
func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}
		if !identity.Allows(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}
