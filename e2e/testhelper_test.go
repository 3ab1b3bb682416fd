package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/reelbrief/api/internal/auth"
	"github.com/reelbrief/api/internal/client"
	"github.com/reelbrief/api/internal/config"
	"github.com/reelbrief/api/internal/handler"
	"github.com/reelbrief/api/internal/middleware"
	"github.com/reelbrief/api/internal/service"
	"github.com/reelbrief/api/internal/store"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *store.Store
}

// setupApp creates a Fiber app identical to main.go but with an in-process
// Redis and unconfigured external clients, so every provider call takes its
// mock/fallback path and nothing leaves the process.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	// External clients — no API keys → mock fallbacks
	openaiClient := client.NewOpenAIClient(&config.OpenAIConfig{})

	// Store and services
	dataStore := store.New(redisClient)
	ledger := service.NewCostLedger(dataStore)
	briefService := service.NewBriefService(dataStore, service.NewBriefParserLLM(openaiClient))
	generationService := service.NewGenerationService(dataStore, ledger, asynqClient)
	iterationService := service.NewIterationService(dataStore, asynqClient)

	// Handlers
	briefHandler := handler.NewBriefHandler(briefService, validate)
	generationHandler := handler.NewGenerationHandler(generationService, validate)
	videoHandler := handler.NewVideoHandler(generationService, iterationService, validate)

	// Auth handler (for /auth/verify)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret)

	// Auth middleware — legacy HMAC only
	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Fiber app
	app := fiber.New()

	// Base routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": 1234567890})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openai":    false,
				"heygen":    false,
				"shotstack": false,
				"pexels":    false,
				"r2":        false,
				"auth":      true,
			},
		})
	})
	app.Get("/auth/verify", authHandler.Verify)

	// API routes (authenticated)
	api := app.Group("/api", authMiddleware.Authenticate())

	// Use very high rate limits so tests don't get blocked
	briefs := api.Group("/briefs", rateLimiter.BriefLimit(10000))
	briefs.Post("/", briefHandler.Create)
	briefs.Get("/:briefId", briefHandler.Get)

	generations := api.Group("/generations")
	generations.Post("/", rateLimiter.GenerationLimit(10000), generationHandler.Start)
	generations.Get("/:generationId", generationHandler.Status)
	generations.Get("/:generationId/videos", generationHandler.Videos)
	generations.Get("/:generationId/costs", generationHandler.Costs)

	videos := api.Group("/videos")
	videos.Get("/:videoId", videoHandler.Get)
	videos.Post("/:videoId/iterate", rateLimiter.IterationLimit(10000), videoHandler.Iterate)
	videos.Post("/:videoId/quality", videoHandler.Quality)

	return &testApp{app: app, store: dataStore}
}

// generateToken creates a legacy HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	claims := auth.LegacyClaims{
		UserID: "test-user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "reelbrief-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus fails the test if the response status is not the expected one.
func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}
