package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playerEngagement/app/echo-server/router"
	"playerEngagement/business/bonus"
	"playerEngagement/business/features"
	playerService "playerEngagement/business/player"
	"playerEngagement/business/recommendation"
	"playerEngagement/internal/middleware"
	"playerEngagement/internal/repository/notification"
	psqlRepo "playerEngagement/internal/repository/postgres"
	redisRepo "playerEngagement/internal/repository/redis"
	"playerEngagement/internal/rest"
	"playerEngagement/pkg/cache"
	"playerEngagement/pkg/config"
	"playerEngagement/pkg/database"
	redisdb "playerEngagement/pkg/database/redis"
	"playerEngagement/pkg/logger"
	"playerEngagement/pkg/metrics"
	"playerEngagement/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const claimSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Player Engagement", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init cache layer, failures inside it degrade to the database
	cacheStore := redisRepo.NewCacheStore(redisClient)
	aside := cache.NewAside(cacheStore)

	// Init repo
	playerRepo := psqlRepo.NewPlayerRepository(db)
	bonusRepo := psqlRepo.NewBonusRepository(db)
	claimRepo := psqlRepo.NewBonusClaimRepository(db)
	depositRepo := psqlRepo.NewDepositRepository(db)
	featureRepo := psqlRepo.NewFeatureRepository(db)
	predictionRepo := psqlRepo.NewPredictionRepository(db)
	recommendationRepo := psqlRepo.NewRecommendationRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(redisClient)

	// Init service
	featureService := features.NewService(featureRepo, aside, cfg.Cache.PlayerFeaturesTTL)
	bonusService := bonus.NewService(bonusRepo, claimRepo, playerRepo, depositRepo, featureService, aside, cfg.Cache, cfg.Bonus)
	predictor := recommendation.NewSegmentPopularityPredictor(predictionRepo)
	recommendationService := recommendation.NewService(recommendationRepo, featureService, predictor, bonusService, aside, cfg.Cache, cfg.Recommendation)
	playerSvc := playerService.NewPlayerService(playerRepo, validate, mailjetEmail, tokenRepo, aside, cfg.Cache, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)

	// Init handler
	playerHandler := rest.NewPlayerHandler(playerSvc)
	bonusHandler := rest.NewBonusHandler(bonusService)
	bonusAdminHandler := rest.NewBonusAdminHandler(bonusService)
	recommendationHandler := rest.NewRecommendationHandler(recommendationService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(playerSvc)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupPlayerRoutes(api, playerHandler, authRequired, adminOnly)
	router.SetBonusRoutes(api, bonusHandler, authRequired)
	router.SetBonusAdminRoutes(api, bonusAdminHandler, authRequired, adminOnly)
	router.SetRecommendationRoutes(api, recommendationHandler, authRequired)

	// Background sweep for overdue claims
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(claimSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case now := <-ticker.C:
				expired, err := bonusService.ExpireClaims(sweepCtx, now)
				if err != nil {
					logger.Error("Claim expiry sweep failed", err)
					continue
				}
				if expired > 0 {
					logger.Info("Claim expiry sweep done", "expired", expired)
				}
			}
		}
	}()

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
