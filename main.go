package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chamado-service/apperrors"
	"chamado-service/controllers"
	"chamado-service/database"
	"chamado-service/formctl"
	"chamado-service/logger"
	"chamado-service/middleware"
	"chamado-service/models"
	aws_pkg "chamado-service/pkg/aws"
	"chamado-service/providers"
	"chamado-service/repository"
	"chamado-service/routes"
	"chamado-service/services"
	"chamado-service/web"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	serviceName    = "chamado-service"
	sheetTTL       = 24 * time.Hour
	jobTTL         = 24 * time.Hour
	formStateTTL   = 2 * time.Hour
	previewWait    = 3 * time.Second
	requestTimeout = 30 * time.Second
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := LoadConfig(ctx)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	// --- 1. AWS clients (all optional) ---
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)

	var cloudWatch io.Writer
	var metrics aws_pkg.MetricsRecorder
	if cfg.CloudWatchEnabled && awsErr == nil {
		if cw, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName); err == nil {
			cloudWatch = cw
		}
		metrics = aws_pkg.NewMetricsClient(awsCfg)
	}

	log := logger.Initialize(logger.Options{Env: cfg.Env, FilePath: cfg.LogFile, CloudWatch: cloudWatch})
	defer log.Sync()

	if awsErr != nil {
		log.Warn("AWS config unavailable, archive/events/metrics disabled (non-fatal)", zap.Error(awsErr))
	}
	log.Info("Google OAuth client",
		zap.String("project_id", cfg.GoogleProjectID),
		zap.String("redirect_url", cfg.GoogleRedirectURL),
		zap.String("cert_url", cfg.GoogleCertURL),
	)

	// --- 2. Storage ---
	db, err := database.ConnectPostgres(cfg.Postgres, log, &models.TicketLog{})
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}

	sheetStore := repository.NewRedisSheetStore(rdb, sheetTTL)
	jobStore := repository.NewRedisJobStore(rdb, jobTTL)
	ticketLogs := repository.NewGormTicketLogRepository(db)

	// --- 3. Dependency Injection ---
	fluig := providers.NewFluigProvider(providers.FluigConfig{
		TicketEndpoint:   cfg.TicketEndpoint,
		EmployeeEndpoint: cfg.EmployeeEndpoint,
		APIKeyHeader:     cfg.APIName,
		APIKey:           cfg.APIKey,
	})
	google := providers.NewGoogleProvider(providers.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		AuthURL:      cfg.GoogleAuthURI,
		TokenURL:     cfg.GoogleTokenURI,
	})

	deps := services.Dependencies{
		Sheets:   sheetStore,
		Jobs:     jobStore,
		Logs:     ticketLogs,
		Provider: fluig,
		Metrics:  metrics,
		Logger:   log,
	}
	if awsErr == nil && cfg.S3Bucket != "" {
		deps.Archiver = aws_pkg.NewS3Archiver(awsCfg, cfg.S3Bucket)
	}
	if awsErr == nil && cfg.SNSTopicARN != "" {
		deps.Publisher = aws_pkg.NewSNSClient(awsCfg)
		deps.TopicArn = cfg.SNSTopicARN
	}

	chamadoService := services.NewChamadoService(deps)
	employeeService := services.NewEmployeeService(fluig, log)
	tokenService, err := services.NewTokenService(cfg.JWTSecret, 0)
	if err != nil {
		log.Fatal("Failed to create token service", zap.Error(err))
	}

	formCtrl, err := formctl.New(formctl.DefaultElements(), formctl.WithLogger(log))
	if err != nil {
		log.Fatal("Invalid form controller elements", zap.Error(err))
	}
	forms := formctl.NewRegistry(formCtrl, func(owner string) formctl.Previewer {
		return controllers.ServicePreviewer(chamadoService, owner)
	}, formStateTTL)

	workerCtx, stopWorker := context.WithCancel(ctx)
	services.StartBatchWorker(workerCtx, jobStore, chamadoService)

	authController := controllers.NewAuthController(google, tokenService, forms, cfg.AllowedDomains, cfg.CookieSecure)
	chamadoController := controllers.NewChamadoController(chamadoService, employeeService, forms, previewWait)

	// --- 4. HTTP Server & Middleware ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewRateLimiter(rate.Limit(10), 30, 10*time.Minute)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(limiter.Middleware())
	r.Use(middleware.Timeout(requestTimeout))
	if metrics != nil {
		r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	}
	r.Use(apperrors.ErrorMiddleware())

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}
	r.SetHTMLTemplate(tmpl)

	routes.RegisterRoutes(r, authController, chamadoController, routes.Options{
		Sessions:       tokenService,
		APIKeyHeader:   cfg.APIName,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// --- 5. Graceful Shutdown ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CSRF(r, cfg.CookieSecure),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Chamado Service starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopWorker()
	limiter.Stop()
	forms.Stop()
	if err := rdb.Close(); err != nil {
		log.Warn("Failed to close redis", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
	log.Info("Server exited cleanly")
}
