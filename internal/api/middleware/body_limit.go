package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 超限请求在 Content-Length 已知时直接拒绝，否则由 MaxBytesReader 在读取时截断
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}

// IsBodyTooLarge 判断绑定错误是否由请求体超限导致
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
