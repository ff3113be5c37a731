package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/utils"
)

// Context keys set by JWTMiddleware.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

type JWTMiddleware struct {
	jwt         *utils.JWTManager
	rateLimiter *InvalidAuthRateLimiter
}

func NewJWTMiddleware(jwt *utils.JWTManager, rateLimiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{jwt: jwt, rateLimiter: rateLimiter}
}

// Handle requires a Bearer token in the Authorization header.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return m.handle(false)
}

// HandleStream also accepts ?token= for EventSource clients, which cannot set headers.
func (m *JWTMiddleware) HandleStream() gin.HandlerFunc {
	return m.handle(true)
}

func (m *JWTMiddleware) handle(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				m.reject(c, "UNAUTHORIZED", "Invalid authorization header")
				return
			}
			token = parts[1]
		} else if allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			m.reject(c, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		claims, err := m.jwt.ValidateJWT(token)
		if err != nil {
			m.reject(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, code, message string) {
	if m.rateLimiter != nil && !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, 401, code, message)
	c.Abort()
}

// RequireRole rejects callers whose token role is not one of roles with 403.
// It must run after Handle.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.Error(c, http.StatusForbidden, utils.ErrForbidden.Error(), "Insufficient role")
		c.Abort()
	}
}

// Role returns the role carried by the caller's token.
func Role(c *gin.Context) string {
	return c.GetString(ContextRole)
}

// UserID returns the authenticated admin id, or 0.
func UserID(c *gin.Context) int {
	return c.GetInt(ContextUserID)
}

// Owner returns the alert/draft session key of the authenticated admin.
func Owner(c *gin.Context) string {
	return strconv.Itoa(UserID(c))
}
