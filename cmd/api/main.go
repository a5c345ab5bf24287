package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/emeahub/resource-hub-api/api/swagger"
	"github.com/emeahub/resource-hub-api/internal/handler"
	"github.com/emeahub/resource-hub-api/internal/middleware"
	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/internal/repository"
	"github.com/emeahub/resource-hub-api/internal/service"
	"github.com/emeahub/resource-hub-api/pkg/cache"
	"github.com/emeahub/resource-hub-api/pkg/config"
	"github.com/emeahub/resource-hub-api/pkg/database"
	"github.com/emeahub/resource-hub-api/pkg/logger"
	corsmiddleware "github.com/emeahub/resource-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/emeahub/resource-hub-api/pkg/middleware/requestid"
	"github.com/emeahub/resource-hub-api/pkg/storage"
)

// @title Resource Hub API
// @version 1.0.0
// @description University resource sharing backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The leaderboard cache degrades to direct reads without redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	assistantRepo := repository.NewAssistantRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	gamificationSvc := service.NewGamificationService(
		userRepo, resourceRepo, ratingRepo, downloadRepo,
		leaderboardRepo, contributionRepo, achievementRepo, cacheRepo,
		logr, cfg.Gamification, cfg.Leaderboard)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	gamificationSvc.Start(ctx)
	defer gamificationSvc.Stop()

	authSvc := service.NewAuthService(userRepo, tokenRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	resourceSvc := service.NewResourceService(
		resourceRepo, userRepo, contributionRepo, downloadRepo,
		store, signer, gamificationSvc, validate, logr,
		service.ResourceConfig{
			MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
			AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
			UploadPoints:     cfg.Gamification.UploadPoints,
			DownloadPoints:   cfg.Gamification.DownloadPoints,
			PublicBaseURL:    cfg.Uploads.PublicBaseURL,
		})
	verificationSvc := service.NewVerificationService(
		resourceRepo, userRepo, contributionRepo, gamificationSvc,
		validate, logr, cfg.Gamification.VerifyPoints)
	ratingSvc := service.NewRatingService(
		ratingRepo, resourceRepo, userRepo, contributionRepo, gamificationSvc,
		validate, logr, cfg.Gamification.RatePoints)
	adminSvc := service.NewAdminService(resourceRepo, userRepo, downloadRepo, auditRepo, achievementRepo, validate, logr)
	assistantSvc := service.NewAssistantService(assistantRepo, resourceRepo, validate, logr, cfg.Assistant)
	catalogSvc := service.NewCatalogService(catalogRepo, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	resourceHandler := handler.NewResourceHandler(resourceSvc, ratingSvc, metricsSvc)
	verificationHandler := handler.NewVerificationHandler(verificationSvc, metricsSvc)
	gamificationHandler := handler.NewGamificationHandler(gamificationSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	assistantHandler := handler.NewAssistantHandler(assistantSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	downloadHandler := handler.NewDownloadHandler(resourceSvc, store)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/register-teacher", authHandler.RegisterTeacher)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	resources := api.Group("/resources")
	{
		resources.GET("", resourceHandler.List)
		resources.GET("/mine", middleware.JWT(authSvc), resourceHandler.ListMine)
		resources.GET("/:id", resourceHandler.Get)
		resources.GET("/:id/ratings", resourceHandler.ListRatings)
		resources.POST("/:id/download", middleware.OptionalJWT(authSvc), resourceHandler.Download)
		resources.POST("", middleware.JWT(authSvc), resourceHandler.Upload)
		resources.DELETE("/:id", middleware.JWT(authSvc), resourceHandler.Delete)
		resources.POST("/:id/rate", middleware.JWT(authSvc), resourceHandler.Rate)
		resources.POST("/:id/report", middleware.JWT(authSvc), resourceHandler.Report)
	}

	api.GET("/files/:token", downloadHandler.Serve)

	catalog := api.Group("/catalog")
	{
		catalog.GET("/departments", catalogHandler.Departments)
		catalog.GET("/subjects", catalogHandler.Subjects)
		catalog.GET("/modules", catalogHandler.Modules)
	}

	api.GET("/leaderboard", gamificationHandler.Leaderboard)
	api.GET("/leaderboard/me", middleware.JWT(authSvc), gamificationHandler.MyStats)
	api.GET("/achievements", gamificationHandler.Achievements)
	api.GET("/achievements/me", middleware.JWT(authSvc), gamificationHandler.MyAchievements)

	timetable := api.Group("/timetable")
	{
		timetable.GET("", timetableHandler.Show)
		timetable.POST("", middleware.JWT(authSvc), middleware.RequireVerifier(), timetableHandler.Save)
		timetable.GET("/my-classes", middleware.JWT(authSvc), middleware.RequireVerifier(), timetableHandler.MyClasses)
		timetable.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireVerifier(), timetableHandler.Delete)
	}

	assistant := api.Group("/assistant")
	{
		assistant.POST("/chat", middleware.JWT(authSvc), assistantHandler.Chat)
		assistant.POST("/search", middleware.OptionalJWT(authSvc), assistantHandler.SmartSearch)
	}

	verification := api.Group("/verification", middleware.JWT(authSvc), middleware.RequireVerifier())
	{
		verification.GET("/pending", verificationHandler.ListPending)
		verification.POST("/:id", verificationHandler.Verify)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/resources", adminHandler.ListResources)
		admin.GET("/resources/export", adminHandler.ExportResources)
		admin.PATCH("/resources/:id/visibility", adminHandler.SetVisibility)
		admin.GET("/teachers", adminHandler.ListTeachers)
		admin.POST("/teachers/:id/approve", adminHandler.ApproveTeacher)
		admin.POST("/achievements", adminHandler.CreateAchievement)
		admin.PUT("/achievements/:id", adminHandler.UpdateAchievement)
		admin.POST("/leaderboard/recompute",
			middleware.Audit(auditRepo, "leaderboard_recompute", "leaderboard"),
			gamificationHandler.RecomputeAll)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
