package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/background"
	"github.com/kdblock/panel/internal/config"
	"github.com/kdblock/panel/internal/database"
	"github.com/kdblock/panel/internal/governor"
	"github.com/kdblock/panel/internal/handlers"
	middlewareCustom "github.com/kdblock/panel/internal/middleware"
	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/repositories"
	"github.com/kdblock/panel/internal/routes"
	"github.com/kdblock/panel/internal/services"
	"github.com/kdblock/panel/internal/storage"
	pkgauth "github.com/kdblock/panel/pkg/auth"
	pkghttp "github.com/kdblock/panel/pkg/http"
	pkglogger "github.com/kdblock/panel/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	adminRepo := repositories.NewAdminRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	galleryRepo := repositories.NewGalleryRepository(db)
	slideshowRepo := repositories.NewSlideshowRepository(db)
	attemptRepo := repositories.NewAttemptRepository(db)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(attemptRepo, logger, cfg.Auth.CleanupInterval)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Object storage for uploads
	objectStore, err := storage.NewS3Store(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL, logger)
	if err != nil {
		logger.Error("failed to initialize object storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Contact-form forwarding via SES
	contactService, err := services.NewAWSSESContactService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.OfficeInbox,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize contact service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	authService := services.NewAuthService(adminRepo, tokenManager, logger, auditLogger)
	adminService := services.NewAdminService(adminRepo, logger, auditLogger)
	notificationService := services.NewNotificationService(notificationRepo, objectStore, cfg.Upload.MaxAttachmentSize, logger, auditLogger)
	photoService := services.NewPhotoService(galleryRepo, slideshowRepo, objectStore, cfg.Upload.MaxImageSize, logger, auditLogger)

	// Login attempt governor, backed by the shared attempt table
	gov := governor.New(
		governor.Config{
			ChallengeAfter: cfg.Governor.ChallengeAfter,
			LockoutAfter:   cfg.Governor.LockoutAfter,
			LockoutFor:     cfg.Governor.LockoutFor,
			FailClosedFor:  cfg.Governor.FailClosedFor,
		},
		attemptRepo,
		governor.NewGenerator(),
		authService,
		authService,
		logger,
	)

	cookieConfig := auth.CookieConfig{
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.Auth.CookieSecure,
	}
	ipConfig := &pkghttp.IPConfig{}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(gov, cookieConfig, ipConfig, auditLogger)
	adminHandler := handlers.NewAdminHandler(adminService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, cfg.Upload.MaxAttachmentSize)
	photoHandler := handlers.NewPhotoHandler(photoService, cfg.Upload.MaxImageSize)
	publicHandler := handlers.NewPublicHandler(notificationService, photoService)
	contactHandler := handlers.NewContactHandler(contactService)

	// Bootstrap the main admin account if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureMainAdmin(ctx, adminRepo, logger); err != nil {
		logger.Error("failed to ensure main admin", slog.Any("error", err))
	}
	cancel()

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, adminHandler, notificationHandler, photoHandler, publicHandler, contactHandler, tokenManager, adminRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureMainAdmin creates the main admin account if MAIN_ADMIN_USERID and
// MAIN_ADMIN_PASSWORD are set and no main admin exists yet.
func ensureMainAdmin(ctx context.Context, adminRepo *repositories.AdminRepository, logger *slog.Logger) error {
	userid := os.Getenv("MAIN_ADMIN_USERID")
	password := os.Getenv("MAIN_ADMIN_PASSWORD")

	if userid == "" || password == "" {
		logger.Info("no MAIN_ADMIN_USERID or MAIN_ADMIN_PASSWORD set, skipping main admin creation")
		return nil
	}

	count, err := adminRepo.CountMainAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count main admins: %w", err)
	}
	if count > 0 {
		logger.Info("main admin already exists")
		return nil
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash main admin password: %w", err)
	}

	admin := &models.Admin{
		UserID:       userid,
		PasswordHash: hashedPassword,
		Role:         models.RoleMainAdmin,
		IsActive:     true,
	}

	if _, err := adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, models.ErrConflict) {
			logger.Info("main admin userid already taken")
			return nil
		}
		return fmt.Errorf("failed to create main admin: %w", err)
	}

	logger.Info("main admin created successfully")
	return nil
}
