package middleware

import (
	"errors"
	"net/http"
	"strings"

	"clubhouse-orders-api/auth"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

const userKey = "currentUser"

// AuthRequired resolves the bearer token to a full user record and
// injects it into the request context. Identity resolution always runs
// before any role or scope check so an unauthenticated caller never
// learns which roles a route expects.
func AuthRequired(tokens *auth.Issuer, users *store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			// Expired and malformed tokens produce distinct messages
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		user, err := users.ByID(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			}
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RoleRequired enforces that the caller has one of the allowed roles.
// Must run after AuthRequired.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
		c.Abort()
	}
}

func rolesString(roles []models.Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += string(r)
	}
	return s
}

// CurrentUser extracts the resolved user from context, nil if the
// request was not authenticated.
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

// CanAccessCourse applies course scoping: superusers reach every
// course, everyone else only courses in their assignment set.
func CanAccessCourse(u *models.User, courseID uint) bool {
	if u == nil {
		return false
	}
	if u.Role == models.RoleSuperuser {
		return true
	}
	return u.AssignedTo(courseID)
}
