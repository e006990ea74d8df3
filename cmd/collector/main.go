package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/q8810247/air-quality-insights/internal/api/http"
	"github.com/q8810247/air-quality-insights/internal/collect"
	"github.com/q8810247/air-quality-insights/internal/config"
	"github.com/q8810247/air-quality-insights/internal/logging"
	"github.com/q8810247/air-quality-insights/internal/owm"
	"github.com/q8810247/air-quality-insights/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run a single capture and exit")
	flag.Parse()

	cfg, err := config.LoadCollector()
	if err != nil {
		logging.New("dev", slog.LevelInfo, "collector").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, "collector")

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := owm.NewClient(httpClient, cfg.APIKey)
	runs := collect.NewRunStore()
	collector := collect.New(client, client, cfg.Cities, cfg.CaptureZone, cfg.OutputCSV, runs, logger)

	if *once {
		if _, err := collector.Run(context.Background()); err != nil {
			logger.Error("capture run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// First capture happens right away; the scheduler takes over one
	// interval later.
	if _, err := collector.Run(context.Background()); err != nil {
		logger.Error("initial capture run failed", "error", err)
	}

	sched := scheduler.New(collector, cfg.Interval, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "air-quality-insights-collector",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "air-quality-insights-collector",
		})
	})

	httpapi.RegisterRoutes(app, runs)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
