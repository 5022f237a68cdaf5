package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nalanda/database"
	"nalanda/internal/config"
	"nalanda/internal/middleware/auth"
	graphqlapi "nalanda/internal/microservices/graphql-api"
	"nalanda/internal/microservices/http-api/handler"
	"nalanda/internal/microservices/http-api/middleware"
	"nalanda/internal/microservices/http-api/repository"
	"nalanda/internal/microservices/http-api/service"
	"nalanda/internal/microservices/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Setup structured logging
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database_unavailable", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		logger.Error("migration_failed", "error", err)
		os.Exit(1)
	}

	pool, err := database.ConnectPool(ctx, cfg, logger)
	if err != nil {
		logger.Error("report_pool_unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Reports work without Redis, just uncached.
	var cache repository.ReportCache
	if cfg.RedisURL != "" {
		client, err := repository.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis_unavailable_reports_uncached", "error", err)
		} else {
			defer client.Close()
			cache = repository.NewRedisReportCache(client, cfg.CacheExpiry())
		}
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTEncryptionKey, cfg.TokenTTL)
	if err != nil {
		logger.Error("token_codec_init_failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	recordRepo := repository.NewBorrowingRecordRepository(db)
	store := repository.NewStore(db)
	reportRepo := repository.NewReportRepository(pool)

	// Services
	authService := service.NewAuthService(userRepo, codec, logger)
	bookService := service.NewBookService(bookRepo, store, logger)
	// Availability feed; committed loans are published to subscribers
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	borrowService := hub.Observe(service.NewBorrowService(bookRepo, recordRepo, store, cache, logger))
	reportService := service.NewReportService(reportRepo, cache, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.RequestTimeout)
	bookHandler := handler.NewBookHandler(bookService, reportService, cfg.RequestTimeout)
	borrowHandler := handler.NewBorrowHandler(borrowService, cfg.RequestTimeout)

	gqlHandler, err := graphqlapi.NewHandler(&graphqlapi.Resolver{
		Books:   bookService,
		Borrows: borrowService,
		Reports: reportService,
		Auth:    authService,
		Logger:  logger,
	}, cfg.RequestTimeout)
	if err != nil {
		logger.Error("graphql_schema_invalid", "error", err)
		os.Exit(1)
	}

	// Setup Gin
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/check-conn", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	requireAuth := middleware.RequireAuth(codec)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)

	api := r.Group("/api")
	authHandler.RegisterRoutes(api.Group("/auth"), loginLimiter.Middleware())
	bookHandler.RegisterRoutes(api.Group("/books"), requireAuth)
	borrowHandler.RegisterRoutes(api.Group("/borrow", requireAuth))

	r.POST("/graphql", middleware.SoftAuth(codec), gqlHandler.Serve)
	r.GET("/ws/availability", websocket.WSHandler(hub, cfg.CORSOrigins))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
		return
	}
	logger.Info("server_stopped_gracefully")
}
