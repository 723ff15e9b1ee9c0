package mw

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roomy-backend/internal/model"
)

// UserKey is the gin context key RequireSession stores the user under.
const UserKey = "roomy.user"

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// Token returns the session token of the request: the cookie named
// cookieName, or else an Authorization bearer token.
func Token(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireSession aborts with 401 unless the request carries a token the
// resolver accepts. Resolver errors wrapping unauthenticated also yield 401;
// any other error is answered with 500.
func RequireSession(resolver SessionResolver, cookieName string, unauthenticated error) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			return
		}

		user, err := resolver.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, unauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sesión inválida o expirada"})
				return
			}
			log.Printf("Error resolving session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user RequireSession attached to c.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
