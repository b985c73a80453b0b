package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"
)

const userContextKey = "currentUser"

// SessionCookieName is the cookie the signed credential travels in when the
// client does not use the Authorization header.
const SessionCookieName = "jwt"

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": msg})
}

// extractToken reads the credential from the Authorization header first,
// falling back to the session cookie.
func extractToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// Authenticate is the gate in front of every protected route: it verifies
// the signed credential, resolves the user it names, rejects sessions issued
// before the user's last password change, and stashes the user in the
// request context.
func Authenticate(auth services.AuthService, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthenticated(c, "You are not logged in! Please log in to get access.")
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			abortUnauthenticated(c, "Invalid token or token verification failed.")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthenticated(c, "Invalid token or token verification failed.")
			return
		}

		// active-only: a deactivated account is locked out even with a live token
		user, err := users.GetByID(c.Request.Context(), userID, true)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				abortUnauthenticated(c, "The user belonging to this token no longer exists.")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Something went wrong"})
			return
		}

		// a credential minted before the last password change is stale
		if user.ChangedPasswordAfter(claims.IssuedAt.Time) {
			abortUnauthenticated(c, "User recently changed password! Please log in again.")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRoles guards a route group behind a role allowlist. It must run
// after Authenticate; a missing user context means the gate never ran.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	allowedSet := map[string]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthenticated(c, "User is not authenticated")
			return
		}
		if _, ok := allowedSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "fail",
				"message": "You do not have permission to perform this action",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user the gate resolved for this request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
