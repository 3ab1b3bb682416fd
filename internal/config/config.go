package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	OpenAI    OpenAIConfig
	HeyGen    HeyGenConfig
	Shotstack ShotstackConfig
	Pexels    PexelsConfig
	R2        R2Config
	Zitadel   ZitadelConfig
	Gateway   GatewayConfig
	Pipeline  PipelineConfig
	Pricing   PricingConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	BriefsPerMin       int
	GenerationsPerHour int
	IterationsPerHour  int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type HeyGenConfig struct {
	APIKey  string
	BaseURL string
	Avatar  string
	Voice   string
}

type ShotstackConfig struct {
	APIKey  string
	BaseURL string
}

type PexelsConfig struct {
	APIKey  string
	BaseURL string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type ZitadelConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type GatewayConfig struct {
	Enabled bool
}

type PipelineConfig struct {
	// MaxConcurrentVideos bounds the per-generation fan-out. Size it to the
	// most rate-limited downstream provider.
	MaxConcurrentVideos int
	WorkerConcurrency   int
}

// PricingConfig holds decimal rate strings; they are parsed once into a
// Pricer. Strings keep binary floating point out of the money path entirely.
type PricingConfig struct {
	ScriptPromptPer1K     string
	ScriptCompletionPer1K string
	AvatarPerSecond       string
	ComposePerSecond      string
	StoragePerGiB         string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("OPENAI_API_KEY")
	readSecret("HEYGEN_API_KEY")
	readSecret("SHOTSTACK_API_KEY")
	readSecret("PEXELS_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("ZITADEL_CLIENT_ID")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("ratelimit.briefs_per_min", "RATELIMIT_BRIEFS_PER_MIN")
	_ = viper.BindEnv("ratelimit.generations_per_hour", "RATELIMIT_GENERATIONS_PER_HOUR")
	_ = viper.BindEnv("ratelimit.iterations_per_hour", "RATELIMIT_ITERATIONS_PER_HOUR")
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = viper.BindEnv("openai.model", "OPENAI_MODEL")
	_ = viper.BindEnv("heygen.api_key", "HEYGEN_API_KEY")
	_ = viper.BindEnv("heygen.base_url", "HEYGEN_BASE_URL")
	_ = viper.BindEnv("heygen.avatar", "HEYGEN_AVATAR")
	_ = viper.BindEnv("heygen.voice", "HEYGEN_VOICE")
	_ = viper.BindEnv("shotstack.api_key", "SHOTSTACK_API_KEY")
	_ = viper.BindEnv("shotstack.base_url", "SHOTSTACK_BASE_URL")
	_ = viper.BindEnv("pexels.api_key", "PEXELS_API_KEY")
	_ = viper.BindEnv("pexels.base_url", "PEXELS_BASE_URL")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("zitadel.domain", "ZITADEL_DOMAIN")
	_ = viper.BindEnv("zitadel.client_id", "ZITADEL_CLIENT_ID")
	_ = viper.BindEnv("zitadel.issuer", "ZITADEL_ISSUER")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")
	_ = viper.BindEnv("pipeline.max_concurrent_videos", "PIPELINE_MAX_CONCURRENT_VIDEOS")
	_ = viper.BindEnv("pipeline.worker_concurrency", "PIPELINE_WORKER_CONCURRENCY")
	_ = viper.BindEnv("pricing.script_prompt_per_1k", "PRICING_SCRIPT_PROMPT_PER_1K")
	_ = viper.BindEnv("pricing.script_completion_per_1k", "PRICING_SCRIPT_COMPLETION_PER_1K")
	_ = viper.BindEnv("pricing.avatar_per_second", "PRICING_AVATAR_PER_SECOND")
	_ = viper.BindEnv("pricing.compose_per_second", "PRICING_COMPOSE_PER_SECOND")
	_ = viper.BindEnv("pricing.storage_per_gib", "PRICING_STORAGE_PER_GIB")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.briefs_per_min", 20)
	viper.SetDefault("ratelimit.generations_per_hour", 10)
	viper.SetDefault("ratelimit.iterations_per_hour", 20)

	// OpenAI defaults
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o-mini")

	// HeyGen defaults
	viper.SetDefault("heygen.base_url", "https://api.heygen.com")
	viper.SetDefault("heygen.avatar", "Daisy-inskirt-20220818")
	viper.SetDefault("heygen.voice", "2d5b0e6cf36f460aa7fc47e3eee4ba54")

	// Shotstack defaults
	viper.SetDefault("shotstack.base_url", "https://api.shotstack.io/v1")

	// Pexels defaults
	viper.SetDefault("pexels.base_url", "https://api.pexels.com")

	// Gateway defaults
	viper.SetDefault("gateway.enabled", false)

	// Pipeline defaults
	viper.SetDefault("pipeline.max_concurrent_videos", 4)
	viper.SetDefault("pipeline.worker_concurrency", 5)

	// Pricing defaults (USD)
	viper.SetDefault("pricing.script_prompt_per_1k", "0.0005")
	viper.SetDefault("pricing.script_completion_per_1k", "0.0015")
	viper.SetDefault("pricing.avatar_per_second", "0.0035")
	viper.SetDefault("pricing.compose_per_second", "0.0020")
	viper.SetDefault("pricing.storage_per_gib", "0.015")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			BriefsPerMin:       viper.GetInt("ratelimit.briefs_per_min"),
			GenerationsPerHour: viper.GetInt("ratelimit.generations_per_hour"),
			IterationsPerHour:  viper.GetInt("ratelimit.iterations_per_hour"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  viper.GetString("openai.api_key"),
			BaseURL: viper.GetString("openai.base_url"),
			Model:   viper.GetString("openai.model"),
		},
		HeyGen: HeyGenConfig{
			APIKey:  viper.GetString("heygen.api_key"),
			BaseURL: viper.GetString("heygen.base_url"),
			Avatar:  viper.GetString("heygen.avatar"),
			Voice:   viper.GetString("heygen.voice"),
		},
		Shotstack: ShotstackConfig{
			APIKey:  viper.GetString("shotstack.api_key"),
			BaseURL: viper.GetString("shotstack.base_url"),
		},
		Pexels: PexelsConfig{
			APIKey:  viper.GetString("pexels.api_key"),
			BaseURL: viper.GetString("pexels.base_url"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		Zitadel: ZitadelConfig{
			Domain:   viper.GetString("zitadel.domain"),
			ClientID: viper.GetString("zitadel.client_id"),
			Issuer:   viper.GetString("zitadel.issuer"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
		Pipeline: PipelineConfig{
			MaxConcurrentVideos: viper.GetInt("pipeline.max_concurrent_videos"),
			WorkerConcurrency:   viper.GetInt("pipeline.worker_concurrency"),
		},
		Pricing: PricingConfig{
			ScriptPromptPer1K:     viper.GetString("pricing.script_prompt_per_1k"),
			ScriptCompletionPer1K: viper.GetString("pricing.script_completion_per_1k"),
			AvatarPerSecond:       viper.GetString("pricing.avatar_per_second"),
			ComposePerSecond:      viper.GetString("pricing.compose_per_second"),
			StoragePerGiB:         viper.GetString("pricing.storage_per_gib"),
		},
	}

	return cfg, nil
}
