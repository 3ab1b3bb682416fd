package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/reelbrief/api/internal/auth"
	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/client"
	"github.com/reelbrief/api/internal/config"
	"github.com/reelbrief/api/internal/handler"
	"github.com/reelbrief/api/internal/middleware"
	"github.com/reelbrief/api/internal/service"
	"github.com/reelbrief/api/internal/store"
	"github.com/reelbrief/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize external clients
	openaiClient := client.NewOpenAIClient(&cfg.OpenAI)
	heygenClient := client.NewHeyGenClient(&cfg.HeyGen)
	shotstackClient := client.NewShotstackClient(&cfg.Shotstack)
	pexelsClient := client.NewPexelsClient(&cfg.Pexels)

	// Initialize R2 client (optional - mock storage when not configured)
	var storage capability.Storage
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Fatalf("Failed to initialize R2 client: %v", err)
		}
		storage = r2Client
	} else {
		log.Println("Info: R2 storage not configured, using mock storage")
		storage = client.NewMockStorage()
	}

	// Initialize Zitadel JWKS verifier (optional - falls back to legacy JWT)
	var jwksVerifier *auth.JWKSVerifier
	if cfg.Zitadel.Issuer != "" {
		var err error
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.Zitadel)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	// Provider capabilities consumed by the pipeline
	caps := &capability.Capabilities{
		Script:   service.NewScriptWriter(openaiClient),
		Avatar:   heygenClient,
		Composer: shotstackClient,
		BRoll:    pexelsClient,
		Storage:  storage,
	}

	// Initialize store, ledger and pricing
	dataStore := store.New(redisClient)
	ledger := service.NewCostLedger(dataStore)
	pricer, err := service.NewPricer(&cfg.Pricing)
	if err != nil {
		log.Fatalf("Failed to load pricing: %v", err)
	}

	// Initialize services
	briefService := service.NewBriefService(dataStore, service.NewBriefParserLLM(openaiClient))
	generationService := service.NewGenerationService(dataStore, ledger, asynqClient)
	iterationService := service.NewIterationService(dataStore, asynqClient)

	// Initialize handlers
	briefHandler := handler.NewBriefHandler(briefService, validate)
	generationHandler := handler.NewGenerationHandler(generationService, validate)
	videoHandler := handler.NewVideoHandler(generationService, iterationService, validate)

	// Initialize auth handler for ForwardAuth verification
	var tokenVerifier auth.TokenVerifier
	if jwksVerifier != nil {
		tokenVerifier = jwksVerifier
	}
	authHandler := handler.NewAuthHandler(tokenVerifier, cfg.JWT.Secret)

	// Initialize middleware (with fallback support)
	var apiAuthMiddleware fiber.Handler
	if cfg.Gateway.Enabled {
		// Behind Traefik: auth is handled by ForwardAuth, read X-User-* headers
		log.Println("Info: Gateway mode enabled — using header-based auth")
		apiAuthMiddleware = middleware.GatewayAuthMiddleware()
	} else {
		// Direct mode: auth is handled by the backend itself
		var authMiddleware *middleware.AuthMiddleware
		if jwksVerifier != nil && cfg.JWT.Secret != "" {
			authMiddleware = middleware.NewAuthMiddlewareWithFallback(jwksVerifier, cfg.JWT.Secret)
		} else if jwksVerifier != nil {
			authMiddleware = middleware.NewAuthMiddleware(jwksVerifier)
		} else {
			authMiddleware = middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret)
		}
		apiAuthMiddleware = authMiddleware.Authenticate()
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openai":    openaiClient.IsConfigured(),
				"heygen":    heygenClient.IsConfigured(),
				"shotstack": shotstackClient.IsConfigured(),
				"pexels":    pexelsClient.IsConfigured(),
				"r2":        storage.Name() == "r2",
				"auth":      jwksVerifier != nil || cfg.JWT.Secret != "",
			},
		})
	})

	// ForwardAuth verification endpoint (internal, called by Traefik)
	app.Get("/auth/verify", authHandler.Verify)

	// API routes
	api := app.Group("/api", apiAuthMiddleware)

	// Brief routes
	briefs := api.Group("/briefs", rateLimiter.BriefLimit(cfg.RateLimit.BriefsPerMin))
	briefs.Post("/", briefHandler.Create)
	briefs.Get("/:briefId", briefHandler.Get)

	// Generation routes
	generations := api.Group("/generations")
	generations.Post("/", rateLimiter.GenerationLimit(cfg.RateLimit.GenerationsPerHour), generationHandler.Start)
	generations.Get("/:generationId", generationHandler.Status)
	generations.Get("/:generationId/videos", generationHandler.Videos)
	generations.Get("/:generationId/costs", generationHandler.Costs)

	// Video routes
	videos := api.Group("/videos")
	videos.Get("/:videoId", videoHandler.Get)
	videos.Post("/:videoId/iterate", rateLimiter.IterationLimit(cfg.RateLimit.IterationsPerHour), videoHandler.Iterate)
	videos.Post("/:videoId/quality", videoHandler.Quality)

	// Start Asynq worker server
	go startWorkerServer(cfg, dataStore, ledger, pricer, caps)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(
	cfg *config.Config,
	dataStore *store.Store,
	ledger *service.CostLedger,
	pricer *service.Pricer,
	caps *capability.Capabilities,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Pipeline.WorkerConcurrency,
			Queues: map[string]int{
				"pipeline": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	pipelineWorker := worker.NewPipelineWorker(dataStore, ledger, pricer, caps, cfg.Pipeline.MaxConcurrentVideos)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypePipeline, pipelineWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
