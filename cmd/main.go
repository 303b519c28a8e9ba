package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "movie-booking/docs"
	"movie-booking/internal/config"
	"movie-booking/internal/database"
	"movie-booking/internal/events"
	"movie-booking/internal/handlers"
	"movie-booking/internal/metrics"
	"movie-booking/internal/repository"
	"movie-booking/internal/routes"
	"movie-booking/internal/seathold"
	"movie-booking/internal/services"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

// @title Movie Booking API
// @version 1.0
// @description Movie catalogue, showtimes, seat holds and ticket orders for the cinema app
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load environment variables
	loadEnvFile()

	// Load configuration
	cfg := config.Load()

	// Setup logger
	log := setupLogger(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Warnf("Configuration validation warning: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	holds, err := seathold.New(seathold.Options{
		TTL:           cfg.Booking.HoldTTL,
		Capacity:      cfg.Booking.HoldStoreCapacity,
		RedisAddress:  cfg.Redis.Address,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("Failed to initialize seat hold store: %v", err)
	}
	defer holds.Close()
	if cfg.Redis.Enabled() {
		log.WithField("address", cfg.Redis.Address).Info("Seat holds stored in Redis")
	} else {
		log.Warn("REDIS_ADDRESS not set, seat holds are kept in memory (single instance only)")
	}

	var publisher events.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher = events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		log.WithField("queue", cfg.RabbitMQ.Queue).Info("Booking events published to RabbitMQ")
	} else {
		publisher = events.NewLogPublisher(log)
	}
	defer publisher.Close()

	var banners services.BannerStorage
	if cfg.MinIO.AccessKeyID == "" {
		log.Warn("AWS_ACCESS_KEY_ID not set, banner uploads disabled")
	} else if minioService, err := services.NewMinIOService(&cfg.MinIO, log); err != nil {
		log.WithError(err).Warn("MinIO unavailable, banner uploads disabled")
	} else {
		banners = minioService
	}

	var tmdb services.TMDBClient
	if cfg.TMDB.APIKey != "" {
		tmdb = services.NewTMDBClient(cfg.TMDB)
	}

	movieRepo := repository.NewMovieRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	userRepo := repository.NewUserRepository(db)
	showtimeRepo := repository.NewShowtimeRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	movieService := services.NewMovieService(movieRepo, genreRepo, banners, tmdb, cfg, log)
	authService := services.NewAuthService(userRepo, cfg.Auth, log)
	showtimeService := services.NewShowtimeService(showtimeRepo, movieRepo, cfg.Booking, log)
	bookingService := services.NewBookingService(showtimeRepo, orderRepo, holds, publisher, cfg.Booking, log)

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := authService.EnsureAdmin(bootstrapCtx); err != nil {
		log.WithError(err).Error("Failed to ensure admin account")
	}
	cancel()

	app := fiber.New(fiber.Config{
		AppName:               "Movie Booking API",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: false,
		ErrorHandler:          utils.ErrorHandler(log),
	})

	setupMiddleware(app)

	app.Get("/health", healthCheckHandler(db))
	app.Get("/metrics", metrics.Handler())

	// Swagger documentation
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Setup API routes
	routes.Setup(app, routes.Handlers{
		Movie:    handlers.NewMovieHandler(movieService, log),
		Upload:   handlers.NewUploadHandler(banners, log),
		Auth:     handlers.NewAuthHandler(authService, bookingService, log),
		Showtime: handlers.NewShowtimeHandler(showtimeService, log),
		Booking:  handlers.NewBookingHandler(bookingService, log),
	}, routes.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		AuthRateLimit: cfg.Server.AuthRateLimit,
	})

	// Graceful shutdown
	go gracefulShutdown(app, log)

	log.Infof("Movie Booking API starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Errorf("HTTP server stopped: %v", err)
	}
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if cfg.IsDevelopment() {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func setupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Logger middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(metrics.Middleware())
}

func healthCheckHandler(db *database.Database) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "healthy"
		code := fiber.StatusOK
		if err := db.HealthCheck(c.UserContext()); err != nil {
			dbStatus = "unhealthy"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":    "ok",
			"service":   "movie-booking",
			"version":   "1.0.0",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func gracefulShutdown(app *fiber.App, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}

	log.Info("Server shutdown complete")
}

func loadEnvFile() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{})
	log.SetOutput(os.Stdout)

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}

	execDir, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not get working directory: %v", err)
		return
	}

	envFile := filepath.Join(execDir, "envs", ".env."+env)
	if err := godotenv.Load(envFile); err != nil {
		log.Warnf("Could not load environment file %s: %v", envFile, err)

		defaultEnvFile := filepath.Join(execDir, "envs", ".env")
		if err := godotenv.Load(defaultEnvFile); err != nil {
			log.Warnf("Could not load default environment file: %v", err)
		} else {
			log.Infof("Environment loaded from default file %s", defaultEnvFile)
		}
	} else {
		log.Infof("Environment loaded from file %s", envFile)
	}
}
