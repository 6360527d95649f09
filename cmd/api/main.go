package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/analysis"
	"github.com/launchmap/backend/internal/api/handlers"
	"github.com/launchmap/backend/internal/cache/redis"
	"github.com/launchmap/backend/internal/estimator"
	"github.com/launchmap/backend/internal/llm"
	"github.com/launchmap/backend/internal/metrics"
	"github.com/launchmap/backend/internal/middleware/ratelimit"
	"github.com/launchmap/backend/internal/middleware/security"
	"github.com/launchmap/backend/internal/middleware/validation"
	"github.com/launchmap/backend/internal/scraper"
	"github.com/launchmap/backend/internal/storage/sqlite"
	"github.com/launchmap/backend/internal/trends"
	"github.com/launchmap/backend/pkg/config"
	appLogger "github.com/launchmap/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Launch Map API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Redis backs the analysis cache and plan quotas; the API degrades to
	// uncached, unmetered operation without it.
	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	var llmClient *llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.Model,
			cfg.LLM.Temperature,
			cfg.LLM.MaxTokens,
			cfg.LLM.TimeoutSec,
		)
	} else {
		appLogger.Warn("LLM API key not set, strategy generation disabled")
	}

	storeScraper := scraper.New(
		time.Duration(cfg.Scraper.TimeoutSec)*time.Second,
		cfg.Scraper.UserAgent,
	)

	analysisService := analysis.NewService(storeScraper, sqliteClient)
	trendsService := trends.NewService(estimator.NewSimulator(estimator.DefaultSimulatorConfig()))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerWindow: cfg.RateLimit.RequestsPerMinute,
		WindowDuration:       time.Minute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Server.Environment == "development",
	}))
	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))
	spyHandler := handlers.NewSpyHandler(analysisService, cacheClient, cfg.Plan.MonthlyAnalyses)
	trendsHandler := handlers.NewTrendsHandler(trendsService)
	streamHandler := handlers.NewTrendsStreamHandler(trendsService, 30*time.Second)
	brandHandler := handlers.NewBrandHandler(sqliteClient, llmClient)
	profitHandler := handlers.NewProfitHandler(sqliteClient)

	api := app.Group("/api/v1")
	api.Use(limiter.Middleware())

	api.Post("/spy/analyze", spyHandler.Analyze)
	api.Put("/spy/analyze", spyHandler.Reanalyze)
	api.Get("/spy/analyses", spyHandler.ListAnalyses)

	api.Get("/trends/forecast", trendsHandler.GetForecast)
	api.Get("/trends/categories", trendsHandler.GetCategories)

	api.Use("/trends/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/trends/live", websocket.New(streamHandler.HandleConnection))

	api.Post("/brands", brandHandler.CreateBrand)
	api.Get("/brands/:id", brandHandler.GetBrand)
	api.Post("/brands/:id/strategy", brandHandler.GenerateStrategy)
	api.Post("/brands/suggest", brandHandler.SuggestIdentity)

	api.Post("/profit/calculate", profitHandler.Calculate)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
