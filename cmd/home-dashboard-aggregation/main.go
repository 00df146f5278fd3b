package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	httpapi "github.com/i474232898/home-dashboard-aggregation/internal/api/http"
	"github.com/i474232898/home-dashboard-aggregation/internal/config"
	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard/providers"
	"github.com/i474232898/home-dashboard-aggregation/internal/fetch"
	"github.com/i474232898/home-dashboard-aggregation/internal/homeassistant"
	"github.com/i474232898/home-dashboard-aggregation/internal/logging"
	"github.com/i474232898/home-dashboard-aggregation/internal/scheduler"
	"github.com/i474232898/home-dashboard-aggregation/internal/store"
)

const appName = "home-dashboard-aggregation"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg, appName))

	// Shared HTTP client for outbound upstream calls. Zero timeout means none.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	weatherFetcher := fetch.NewClient("open-meteo", httpClient, cfg.UpstreamBreaker)
	hubFetcher := fetch.NewClient("home-assistant", httpClient, cfg.UpstreamBreaker)
	hub := homeassistant.NewClient(cfg.HomeAssistantAPI, cfg.HomeAssistantToken, hubFetcher)

	weather := providers.NewOpenMeteoProvider(weatherFetcher, cfg.WeatherAPIURL, cfg.WeatherModel, cfg.Latitude, cfg.Longitude, cfg.Variant)
	calendar := providers.NewCalendarProvider(hub, cfg.CalendarID, cfg.CalendarWindow)
	sensors := providers.NewSensorProvider(hub, cfg.TempSensors, cfg.HumiditySensors)

	service := dashboard.NewService(cfg.Variant, weather, calendar, sensors)

	// Upstream reachability probes, kept in memory for /health/upstreams.
	probes := store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)
	sched := scheduler.New([]scheduler.Prober{hub, weather}, cfg.ProbeInterval, probes)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
			"variant": string(cfg.Variant),
		})
	})

	httpapi.RegisterRoutes(app, service, probes)

	go func() {
		slog.Info("listening", "port", cfg.Port, "variant", string(cfg.Variant))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}
