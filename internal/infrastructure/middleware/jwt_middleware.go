package middleware

import (
	"net/http"
	"strings"

	"beacon_chat_server/pkg/errorx"
	"beacon_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key holding the authenticated user uuid.
const ContextUserKey = "user_id"

// JWTAuth validates the bearer access token and stores the user uuid in
// the request context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "authentication required",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "malformed authorization header, expected Bearer token",
			})
			return
		}

		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "token expired or invalid",
			})
			return
		}

		if claims.Subject != "access_token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "access token required",
			})
			return
		}

		c.Set(ContextUserKey, claims.UserID)
		c.Next()
	}
}

// CurrentUser returns the authenticated user uuid set by JWTAuth.
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
