package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/statewise/internal/api/http"
	"github.com/i474232898/statewise/internal/config"
	"github.com/i474232898/statewise/internal/providers"
	"github.com/i474232898/statewise/internal/scheduler"
	"github.com/i474232898/statewise/internal/snapshot"
	"github.com/i474232898/statewise/internal/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	if cfg.OpenWeatherAPIKey == "" || cfg.NPSAPIKey == "" {
		log.Warn("OPENWEATHER_API_KEY or NPS_API_KEY is not set; lookups that need them will fail")
	}

	// Shared HTTP client for outbound provider calls. Each provider also bounds its own call.
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	st, closer, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	service := snapshot.NewService(cfg,
		providers.NewOpenWeatherProvider(httpClient, cfg),
		providers.NewNPSProvider(httpClient, cfg),
		st,
	)

	sched := scheduler.New(cfg.SnapshotStates, cfg.SnapshotAt, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "statewise",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Long enough for a snapshot whose upstreams both use their full timeout.
		WriteTimeout: cfg.UpstreamTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "statewise",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("statewise listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}

// openStore builds the snapshot store selected by STORE_DRIVER. The closer is nil
// for the memory store.
func openStore(ctx context.Context, cfg *config.AppConfig) (snapshot.Store, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return store.NewMemoryStore(cfg.StoreMaxHistory), nil, nil
	case config.DriverRedis:
		s, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		s, err := store.OpenSQL(ctx, cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}
