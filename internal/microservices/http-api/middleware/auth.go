package middleware

import (
	"log/slog"
	"net/http"

	"nalanda/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

// Keys under which the gates store the caller in the gin context.
const (
	PrincipalKey = "principal"
	UserIDKey    = "userID"
	RoleKey      = "role"
)

// RequireAuth is the blocking gate used by the REST routes. A missing,
// malformed, expired or undecryptable token ends the request with 401.
func RequireAuth(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := codec.Resolve(c.GetHeader("Authorization"))
		switch res.Status {
		case auth.StatusUnauthenticated:
			abort(c, http.StatusUnauthorized, "not authorized, no token")
			return
		case auth.StatusInvalid:
			slog.Debug("token rejected", "path", c.FullPath(), "reason", res.Reason)
			abort(c, http.StatusUnauthorized, "not authorized, token failed")
			return
		}

		setPrincipal(c, res.Principal)
		c.Next()
	}
}

// SoftAuth is the non-blocking gate used by GraphQL. It never aborts; every
// operation decides for itself what an anonymous caller may do.
func SoftAuth(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := codec.Resolve(c.GetHeader("Authorization"))
		if res.Status == auth.StatusInvalid {
			slog.Debug("token rejected, continuing anonymously", "path", c.FullPath(), "reason", res.Reason)
		}
		setPrincipal(c, res.Principal)
		c.Next()
	}
}

// RequireRole must run after RequireAuth. Without a principal it fails closed.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := auth.Authorize(CurrentPrincipal(c), roles...); err {
		case nil:
			c.Next()
		case auth.ErrUnauthenticated:
			abort(c, http.StatusUnauthorized, "not authorized")
		default:
			abort(c, http.StatusForbidden, "access denied")
		}
	}
}

// CurrentPrincipal returns the caller stored by either gate, or the zero
// (anonymous) principal.
func CurrentPrincipal(c *gin.Context) auth.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return auth.Principal{}
	}
	p, _ := v.(auth.Principal)
	return p
}

func setPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(PrincipalKey, p)
	if p.Authenticated {
		c.Set(UserIDKey, p.UserID)
		c.Set(RoleKey, p.Role)
	}
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
