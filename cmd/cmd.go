package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memories-backend/internal/config"
	"memories-backend/internal/database"
	"memories-backend/internal/handlers"
	"memories-backend/internal/metrics"
	"memories-backend/internal/middleware"
	"memories-backend/internal/oauth"
	"memories-backend/internal/repository"
	"memories-backend/internal/services"
	"memories-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Apply schema migrations
	if err := database.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Database schema up to date")

	// Initialize media storage
	mediaStorage, uploadsDir, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media storage")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	memoryRepo := repository.NewMemoryRepository(db)

	// Initialize services
	githubProvider := oauth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret)
	authService := services.NewAuthService(githubProvider, userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	memoryService := services.NewMemoryService(memoryRepo)
	uploadService := services.NewUploadService(mediaStorage, cfg.Upload.MaxBytes)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, githubProvider)
	memoryHandler := handlers.NewMemoryHandler(memoryService)
	uploadHandler := handlers.NewUploadHandler(uploadService, collector)

	// Rate limiter for the routes reachable without a session
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(collector.Middleware)
	r.Use(corsMiddleware)

	// Registration
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Get("/register", authHandler.Login)
		r.Post("/register", authHandler.Register)
	})

	// Memories: the two read paths are public with visibility rules
	// enforced downstream, everything else requires a session
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(authService))
		r.Get("/memories", memoryHandler.ListMemories)
		r.Get("/memories/{id}", memoryHandler.GetMemory)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService))
		r.Post("/memories", memoryHandler.CreateMemory)
		r.Put("/memories/{id}", memoryHandler.UpdateMemory)
		r.Delete("/memories/{id}", memoryHandler.DeleteMemory)
	})

	// Upload
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/upload", uploadHandler.Upload)
	})

	// Serve stored media when running on disk storage
	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler(registry))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newStorage builds the configured media storage backend. The second
// return value is the local uploads directory, empty for S3.
func newStorage(cfg *config.Config) (storage.Storage, string, error) {
	switch cfg.Storage.Type {
	case "disk":
		disk, err := storage.NewDiskStorage(cfg.Storage.Disk.Dir)
		if err != nil {
			return nil, "", err
		}
		return disk, disk.Dir(), nil
	case "s3":
		s3Storage, err := storage.NewS3Storage(
			context.Background(),
			cfg.Storage.S3.Region,
			cfg.Storage.S3.Bucket,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
			cfg.Storage.S3.Endpoint,
		)
		if err != nil {
			return nil, "", err
		}
		return s3Storage, "", nil
	default:
		return nil, "", fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
