package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"movie-booking/internal/config"
	"movie-booking/internal/events"
	"movie-booking/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	loadEnvFile()
	cfg := config.Load()
	log := setupLogger(cfg)

	if cfg.RabbitMQ.URL == "" {
		log.Fatal("RABBITMQ_URL must be set for the booking worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// metrics only; the worker serves no API
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "movie-booking-worker"})
	})
	go func() {
		if err := app.Listen(":" + cfg.Server.WorkerPort); err != nil {
			log.WithError(err).Error("Metrics listener stopped")
		}
	}()

	consumer := events.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Prefetch, confirmationHandler(log), log)

	log.WithField("queue", cfg.RabbitMQ.Queue).Info("Booking worker started")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Consumer stopped")
	}

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.WithError(err).Warn("Error shutting down metrics listener")
	}
	log.Info("Booking worker stopped")
}

// confirmationHandler logs each confirmed booking. Ticket e-mail delivery
// would hang off this handler.
func confirmationHandler(log *logrus.Logger) events.HandlerFunc {
	return func(_ context.Context, ev events.BookingConfirmed) error {
		log.WithFields(logrus.Fields{
			"order_id":     ev.OrderID,
			"order_number": ev.OrderNumber,
			"user_email":   ev.UserEmail,
			"movie":        ev.MovieTitle,
			"starts_at":    ev.StartsAt,
			"auditorium":   ev.Auditorium,
			"seats":        ev.Seats,
			"total_cents":  ev.TotalCents,
		}).Info("Booking confirmed")
		return nil
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

func loadEnvFile() {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}
	execDir, err := os.Getwd()
	if err != nil {
		return
	}
	if err := godotenv.Load(filepath.Join(execDir, "envs", ".env."+env)); err != nil {
		_ = godotenv.Load(filepath.Join(execDir, "envs", ".env"))
	}
}
