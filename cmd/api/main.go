package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/coursehub/backend/docs"
	"github.com/coursehub/backend/internal/handlers"
	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/repositories"
	"github.com/coursehub/backend/internal/services"
	"github.com/coursehub/backend/internal/storage"
	"github.com/coursehub/backend/internal/tasks"
	"github.com/coursehub/backend/libs/auth/middleware"
	"github.com/coursehub/backend/libs/auth/service"
	"github.com/coursehub/backend/libs/config"
	"github.com/coursehub/backend/libs/logger"
	loggerMiddleware "github.com/coursehub/backend/libs/logger/middleware"
	sharedMiddleware "github.com/coursehub/backend/libs/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title CourseHub API
// @version 1.0
// @description API for educators authoring courses and students taking them

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting CourseHub API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize media storage
	mediaStorage, closeStorage, err := newStorage(context.Background(), cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize media storage", zap.Error(err))
	}
	defer closeStorage()

	// Notifications are delivered by the worker through asynq
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()
	notifier := tasks.NewEnqueuer(asynqClient, logger.Logger)

	// Initialize repositories
	educatorRepo := repositories.NewEducatorRepository(db, logger.Logger)
	studentRepo := repositories.NewStudentRepository(db, logger.Logger)
	courseRepo := repositories.NewCourseRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	mediaRepo := repositories.NewMediaRepository(db)

	// Initialize services
	authService := services.NewAuthService(educatorRepo, studentRepo, tokenGenerator, notifier, cfg.Auth.BcryptCost, logger.Logger)
	courseService := services.NewCourseService(courseRepo)
	studentService := services.NewStudentService(courseRepo, enrollmentRepo, notifier, logger.Logger)
	mediaService := services.NewMediaService(mediaRepo, mediaStorage, logger.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	courseHandler := handlers.NewEducatorCourseHandler(courseService, logger.Logger)
	studentHandler := handlers.NewStudentHandler(studentService, logger.Logger)
	mediaHandler := handlers.NewMediaHandler(mediaService, cfg.Server.UploadTimeout, logger.Logger)

	// Initialize role middleware
	educatorMiddleware := middleware.RoleMiddleware(tokenGenerator, string(models.RoleEducator))
	studentMiddleware := middleware.RoleMiddleware(tokenGenerator, string(models.RoleStudent))
	jsonSizeLimit := sharedMiddleware.RequestSizeLimitMiddleware(sharedMiddleware.DefaultMaxRequestSize)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Uploaded files are served directly when stored on disk
	if local, ok := mediaStorage.(interface{ Dir() string }); ok {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(local.Dir()))))
	}

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)

		// JSON endpoints share the default body limit
		r.Group(func(r chi.Router) {
			r.Use(jsonSizeLimit)
			authHandler.RegisterRoutes(r)
			courseHandler.RegisterRoutes(r, educatorMiddleware)
			studentHandler.RegisterRoutes(r, studentMiddleware)
		})

		// Uploads are streamed and get their own limit
		mediaHandler.RegisterRoutes(r, educatorMiddleware,
			sharedMiddleware.RequestSizeLimitMiddleware(sharedMiddleware.UploadMaxRequestSize))
	})

	// Start server
	// Uploads extend their own deadlines up to cfg.Server.UploadTimeout
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newStorage creates the configured media storage backend and its cleanup function
func newStorage(ctx context.Context, cfg *config.Config) (services.Storage, func() error, error) {
	if cfg.Storage.Backend == config.StorageBackendGCS {
		gcs, err := storage.NewGCSStorage(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return gcs, gcs.Close, nil
	}
	return storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL), func() error { return nil }, nil
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "coursehub_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Try parent directory if running from cmd
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
