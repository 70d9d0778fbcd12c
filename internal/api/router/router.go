package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gradebook/config"
	"gradebook/internal/api/handler"
	"gradebook/internal/api/middleware"
	"gradebook/internal/model"
	"gradebook/pkg/jwt"
	"gradebook/pkg/redis"
)

// 登录接口限流：每个 IP 每分钟 10 次
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Deps 路由依赖
type Deps struct {
	Config      *config.Config
	Handler     *handler.Handler
	JWT         *jwt.Manager
	Users       middleware.UserLookup
	Revocations middleware.RevocationChecker
	Redis       *redis.Client // 可为 nil，此时不限流
	Logger      *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	if d.Config.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	h := d.Handler

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(d.Config.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(d.Config.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleTeacher)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(d.Redis, loginRateLimit, loginRateWindow, d.Logger), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.JWT, d.Users, d.Revocations))
		{
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.POST("/auth/logout", h.Auth.Logout)

			authorized.GET("/courses", h.Course.ListCourses)

			// 成绩模块：读取按角色过滤，修改仅 admin / teacher
			grades := authorized.Group("/grades")
			{
				grades.GET("", h.Grade.ListGrades)
				grades.GET("/export", h.Export.ExportGrades)
				grades.GET("/:id", h.Grade.GetGrade)
				grades.POST("", staff, h.Grade.CreateGrade)
				grades.PUT("/:id", staff, h.Grade.UpdateGrade)
				grades.DELETE("/:id", staff, h.Grade.DeleteGrade)
			}

			// 编辑器（每个用户一个）
			ed := authorized.Group("/editor")
			{
				ed.GET("", h.Editor.GetEditor)
				ed.POST("/add", staff, h.Editor.Add)
				ed.POST("/edit/:id", staff, h.Editor.Edit)
				ed.POST("/save", staff, h.Editor.Save)
				ed.POST("/cancel", h.Editor.Cancel)
			}
		}
	}

	return r
}
