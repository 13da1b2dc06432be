package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextEmail  = "email"
)

// Middleware 先读 Authorization: Bearer，缺省时回退到 cookie
func Middleware(svc *Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" && cookieName != "" {
			raw, _ = c.Cookie(cookieName)
		}
		claims, err := svc.ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "login required",
			})
			return
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

func bearerToken(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserID 取中间件写入的用户 ID
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
