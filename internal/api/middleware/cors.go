package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件，仅对白名单中的 Origin 回写允许头
// 白名单包含 "*" 时允许任意来源（此时不携带凭据）
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowAll := false
	origins := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		o = strings.TrimRight(o, "/")
		if o == "*" {
			allowAll = true
		}
		origins[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case origin != "" && origins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		case origin != "" && allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		}
		if origin != "" && (allowAll || origins[origin]) {
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
