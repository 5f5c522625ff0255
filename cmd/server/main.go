package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/seapod-portal/internal/config"
	"github.com/bitfantasy/seapod-portal/internal/middleware"
	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/handler"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting seapod-portal service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Item{},
		&entity.Kit{},
		&entity.KitItem{},
		&entity.SeapodTemplate{},
		&entity.SeapodTemplateItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.OrderFile{},
		&entity.SeapodProduction{},
		&entity.SeapodItem{},
		&entity.SeapodFile{},
		&entity.Profile{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1，全部需要认证
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 用户档案
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/me", h.Profile.Me)
			profiles.GET("", h.Profile.List)
			profiles.PUT("/:id/role", h.Profile.SetRole)
		}

		// 主数据
		items := v1.Group("/items")
		{
			items.GET("", h.Catalog.ListItems)
			items.POST("", h.Catalog.CreateItem)
			items.PUT("/:id", h.Catalog.UpdateItem)
			items.DELETE("/:id", h.Catalog.DeleteItem)
		}
		kits := v1.Group("/kits")
		{
			kits.GET("", h.Catalog.ListKits)
			kits.GET("/:id", h.Catalog.GetKit)
			kits.POST("", h.Catalog.CreateKit)
			kits.DELETE("/:id", h.Catalog.DeleteKit)
			kits.POST("/:id/items", h.Catalog.AddKitItem)
			kits.DELETE("/:id/items/:itemId", h.Catalog.DeleteKitItem)
		}
		templates := v1.Group("/seapod-templates")
		{
			templates.GET("", h.Catalog.ListTemplates)
			templates.GET("/:id", h.Catalog.GetTemplate)
			templates.POST("", h.Catalog.CreateTemplate)
			templates.PUT("/:id", h.Catalog.UpdateTemplate)
			templates.DELETE("/:id", h.Catalog.DeleteTemplate)
			templates.POST("/:id/items", h.Catalog.AddTemplateItem)
			templates.DELETE("/:id/items/:itemId", h.Catalog.DeleteTemplateItem)
		}

		// 订单
		orders := v1.Group("/orders")
		{
			orders.POST("", h.Order.Create)
			orders.GET("", h.Order.List)
			orders.GET("/export", h.Order.Export)
			orders.GET("/:id", h.Order.Get)
			orders.PATCH("/:id", h.Order.UpdateField)
			orders.DELETE("/:id", h.Order.Delete)

			// 状态门禁与发货
			orders.POST("/:id/status", h.Order.RequestStatus)
			orders.POST("/:id/status/resolve-conflict", h.Order.ResolveConflict)
			orders.POST("/:id/ship", middleware.RequireShipRole(), h.Order.ConfirmShipment)
			orders.POST("/:id/vessel-check", h.Order.CheckVessel)

			// 行项目
			orders.POST("/:id/items", h.Order.AddItem)
			orders.POST("/:id/items/reorder", h.Order.ReorderItems)
			orders.PATCH("/:id/items/:itemId", h.Order.UpdateItem)
			orders.DELETE("/:id/items/:itemId", h.Order.DeleteItem)

			// 附件
			orders.POST("/:id/files", h.Order.UploadFile)
			orders.GET("/:id/files/:fileId", h.Order.DownloadFile)
			orders.DELETE("/:id/files/:fileId", h.Order.DeleteFile)

			// 建机向导
			orders.GET("/:id/wizard", h.Wizard.Get)
			orders.POST("/:id/wizard/template", h.Wizard.SelectTemplate)
			orders.PATCH("/:id/wizard/items/:itemId", h.Wizard.UpdateItemSerial)
			orders.POST("/:id/wizard/confirm-serials", h.Wizard.ConfirmSerials)
			orders.POST("/:id/wizard/back", h.Wizard.Back)
			orders.POST("/:id/wizard/acknowledge", h.Wizard.Acknowledge)
			orders.DELETE("/:id/wizard", h.Wizard.Cancel)
		}

		// 设备生产记录
		seapods := v1.Group("/seapods")
		{
			seapods.POST("", h.Seapod.Create)
			seapods.GET("", h.Seapod.List)
			seapods.GET("/:id", h.Seapod.Get)
			seapods.PATCH("/:id", h.Seapod.UpdateHeader)
			seapods.POST("/:id/complete", h.Seapod.Complete)

			seapods.POST("/:id/items", h.Seapod.AddItem)
			seapods.PATCH("/:id/items/:itemId", h.Seapod.UpdateItem)
			seapods.DELETE("/:id/items/:itemId", h.Seapod.DeleteItem)

			seapods.POST("/:id/files", h.Seapod.UploadFile)
			seapods.GET("/:id/files/:fileId", h.Seapod.DownloadFile)
			seapods.DELETE("/:id/files/:fileId", h.Seapod.DeleteFile)
		}
	}
}
