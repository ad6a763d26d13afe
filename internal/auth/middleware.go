package auth

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the acting user id when a trusted gateway sits in front of the service.
	UserIDHeader = "X-Sharer-User-Id"

	// GatewaySecretHeader authenticates the gateway on the token issuing route.
	GatewaySecretHeader = "X-Gateway-Secret"
)

// Identify is a Gin middleware resolving the acting user.
// With a non-nil jwtManager every request must carry a valid bearer token and
// X-Sharer-User-Id is ignored; otherwise the header is trusted as is.
func Identify(jwtManager *JWTManager) gin.HandlerFunc {
	if jwtManager != nil {
		return bearer(jwtManager)
	}
	return fromHeader
}

// Gateway trusts X-Sharer-User-Id only when the request also carries the shared gateway secret.
// An empty secret rejects every request.
func Gateway(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(GatewaySecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or missing " + GatewaySecretHeader + " header",
			})
			return
		}
		fromHeader(c)
	}
}

func bearer(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}

		claims, err := jwtManager.ParseAndValidate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func fromHeader(c *gin.Context) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing " + UserIDHeader + " header",
		})
		return
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "invalid " + UserIDHeader + " header",
		})
		return
	}

	// Store user info into Gin context for later handlers.
	c.Set(userIDKey, userID)
	c.Next()
}
