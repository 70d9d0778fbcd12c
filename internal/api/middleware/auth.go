package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/pkg/jwt"
	"gradebook/pkg/response"
)

// UserLookup 按 ID 查找用户（identity.Directory 实现）
type UserLookup interface {
	Get(id string) (*model.User, error)
}

// RevocationChecker 判断 Token 是否已登出（identity.SessionProvider 实现）
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 校验通过后把会话写入请求上下文，供 identity.Provider 读取。
// revocations 为 nil 时不检查黑名单
func JWTAuth(jwtMgr *jwt.Manager, users UserLookup, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if revocations != nil && revocations.IsRevoked(c.Request.Context(), claims.ID) {
			response.Unauthorized(c, 10002, "Token 已失效，请重新登录")
			c.Abort()
			return
		}

		// 以目录中的用户为准，Token 中的角色仅作参考
		user, err := users.Get(claims.UserID)
		if err != nil {
			response.Unauthorized(c, 10002, "用户不存在")
			c.Abort()
			return
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		c.Set("user_id", user.ID)
		c.Set("role", string(user.Role))
		c.Set("token_jti", claims.ID)
		c.Set("token_exp", expiresAt)

		ctx := identity.WithSession(c.Request.Context(), identity.Session{
			User:      *user,
			TokenID:   claims.ID,
			ExpiresAt: expiresAt,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if model.Role(role) == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
