package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradebook/config"
	"gradebook/internal/api/handler"
	"gradebook/internal/api/router"
	"gradebook/internal/catalog"
	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/internal/policy"
	"gradebook/internal/repository"
	"gradebook/internal/service"
	"gradebook/internal/store"
	"gradebook/pkg/database"
	"gradebook/pkg/jwt"
	applogger "gradebook/pkg/logger"
	"gradebook/pkg/redis"
)

func main() {
	// 0. 本地开发时从 .env 注入环境变量（文件不存在时忽略）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "读取 .env 失败: %v\n", err)
		os.Exit(1)
	}

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("GRADEBOOK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：除 redis 存储驱动外，连接失败时降级运行）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		if cfg.Store.Driver == config.StoreDriverRedis {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		logger.Warn("Redis 连接失败，登出黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 4. 选择成绩快照存储
	blobs, db := openBlobStore(cfg, rdb, logger)

	grades := store.NewGradeStore(blobs, cfg.Store.Key, logger)
	var seed []model.Grade
	if cfg.Store.SeedDemo {
		seed = catalog.DemoGrades(time.Now())
	}
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := grades.Init(initCtx, seed); err != nil {
		// 载入失败仍以初始数据启动，下一次修改会覆盖损坏的快照
		logger.Warn("成绩快照不可用，以初始数据启动", zap.Error(err))
	}
	initCancel()

	// 5. 用户目录与身份提供方
	accounts, err := identity.DemoAccounts(cfg.Auth.DemoPassword)
	if err != nil {
		logger.Fatal("生成演示账号失败", zap.Error(err))
	}
	directory, err := identity.NewDirectory(accounts)
	if err != nil {
		logger.Fatal("构建用户目录失败", zap.Error(err))
	}

	var blacklist identity.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	sessions := identity.NewSessionProvider(blacklist, logger)

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Store → Service → Handler
	svc := service.NewService(service.Deps{
		Directory: directory,
		Identity:  sessions,
		JWT:       jwtMgr,
		Grades:    grades,
		Catalog:   catalog.Default(),
		Mutator:   policy.NewMutator(nil, nil),
		Logger:    logger,
	})
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(router.Deps{
		Config:      cfg,
		Handler:     h,
		JWT:         jwtMgr,
		Users:       directory,
		Revocations: sessions,
		Redis:       rdb,
		Logger:      logger,
	})

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// openBlobStore 按 store.driver 创建快照存储
// postgres 驱动会同时返回数据库连接，供关闭时释放
func openBlobStore(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (store.BlobStore, *gorm.DB) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("使用内存存储，重启后成绩数据将丢失")
		return store.NewMemoryBlobStore(), nil

	case config.StoreDriverRedis:
		return store.NewRedisBlobStore(rdb), nil

	case config.StoreDriverPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		repo := repository.NewRepository(db)
		return store.NewPostgresBlobStore(repo.KVBlob), db

	default:
		return store.NewFileBlobStore(cfg.Store.DataDir), nil
	}
}
