package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vortechdev/enilai-gateway/api/swagger"
	"github.com/vortechdev/enilai-gateway/internal/handler"
	"github.com/vortechdev/enilai-gateway/internal/middleware"
	"github.com/vortechdev/enilai-gateway/internal/repository"
	"github.com/vortechdev/enilai-gateway/internal/screen"
	"github.com/vortechdev/enilai-gateway/internal/service"
	"github.com/vortechdev/enilai-gateway/internal/session"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	"github.com/vortechdev/enilai-gateway/pkg/cache"
	"github.com/vortechdev/enilai-gateway/pkg/config"
	"github.com/vortechdev/enilai-gateway/pkg/logger"
	corsmiddleware "github.com/vortechdev/enilai-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/vortechdev/enilai-gateway/pkg/middleware/requestid"
)

// @title E-Nilai Gateway
// @version 0.1.0
// @description Session-holding gateway for the E-Nilai grade management API
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	client := upstream.New(cfg.Upstream, logr, metricsSvc)

	// Sessions fall back to process memory when Redis is unreachable; fine
	// for development, logins then die with the process.
	var sessionStore session.Store
	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-memory sessions")
		sessionStore = session.NewMemoryStore()
	} else {
		sessionStore = session.NewRedisStore(redisClient, cfg.Session.TTL)
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	cookies := session.NewCookieCodec(cfg.Session.Secret, cfg.Session.TTL)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	screens := screen.NewManager(client, screen.Registry(), cfg.Screens.ToastTTL, logr)

	authSvc := service.NewAuthService(client, sessionStore, screens, logr)
	dashboardSvc := service.NewDashboardService(client, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	profileSvc := service.NewProfileService(client, logr)
	classDetailSvc := service.NewClassDetailService(client, logr)
	exportSvc := service.NewExportService(client, cfg.Exports.Enabled, logr)

	authHandler := handler.NewAuthHandler(authSvc, cookies, cfg.Session)
	screenHandler := handler.NewScreenHandler(screens)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	classDetailHandler := handler.NewClassDetailHandler(classDetailSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)

	authed := r.Group("/", middleware.Authenticate(sessionStore, cookies, cfg.Session.CookieName))
	authed.GET("/auth/me", authHandler.Me)

	screensGroup := authed.Group("/screens/:entity")
	screensGroup.GET("", screenHandler.Show)
	screensGroup.GET("/state", screenHandler.State)
	screensGroup.POST("/draft", screenHandler.Draft)
	screensGroup.POST("/submit", screenHandler.Submit)
	screensGroup.POST("/edit/cancel", screenHandler.CancelEdit)
	screensGroup.POST("/edit/:id", screenHandler.Edit)
	screensGroup.POST("/delete/confirm", screenHandler.ConfirmDelete)
	screensGroup.POST("/delete/cancel", screenHandler.CancelDelete)
	screensGroup.POST("/delete/:id", screenHandler.Delete)

	admin := authed.Group("/admin", middleware.RequireRoles("admin"))
	admin.GET("/dashboard", dashboardHandler.Admin)
	admin.GET("/overview", dashboardHandler.Overview)

	teacher := authed.Group("/teacher", middleware.RequireRoles("teacher"))
	teacher.GET("/dashboard", dashboardHandler.Teacher)
	teacher.GET("/profile", profileHandler.Teacher)
	teacher.PUT("/profile", profileHandler.UpdateTeacher)
	teacher.GET("/classes/:id", classDetailHandler.Detail)
	teacher.POST("/classes/:id/scores", classDetailHandler.SubmitScore)

	student := authed.Group("/student", middleware.RequireRoles("student"))
	student.GET("/profile", profileHandler.Student)
	student.PUT("/update-password", profileHandler.UpdateStudentPassword)

	exports := authed.Group("/exports", middleware.RequireRoles("admin", "teacher"))
	exports.GET("/scores", exportHandler.Scores)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("gateway starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("gateway failed", "error", err)
	}
}
