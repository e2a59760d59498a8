package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret         string
	AccessTokenExpiry time.Duration

	// LLM provider: "gemini" or "openrouter"
	LLMProvider string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// OpenRouter (OpenAI-compatible)
	OpenRouterAPIKey string
	OpenRouterModel  string

	// Guardrails
	ChatRateLimit  int
	ChatRateWindow time.Duration
	AuthRateLimit  int
	MaxImageBytes  int

	// Frontend
	CORSOrigins []string
}

var defaultCORSOrigins = []string{
	"https://axiom-math-ai.vercel.app",
	"https://axiom-math-ai.com",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET_KEY"),
		AccessTokenExpiry:    time.Duration(getEnvAsIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		LLMProvider:          strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		OpenRouterAPIKey:     getEnvOrDefault("OPENROUTER_API_KEY", ""),
		OpenRouterModel:      getEnvOrDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		ChatRateLimit:        getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 5),
		ChatRateWindow:       time.Duration(getEnvAsIntOrDefault("CHAT_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:        getEnvAsIntOrDefault("AUTH_RATE_LIMIT", 10),
		MaxImageBytes:        getEnvAsIntOrDefault("MAX_IMAGE_BYTES", 5<<20),
		CORSOrigins:          getEnvAsListOrDefault("CORS_ORIGINS", defaultCORSOrigins),
	}

	return cfg
}

// Validate refuses to start with a missing or obviously truncated provider key
// or with non-positive limits.
func (c *Config) Validate() error {
	var key string
	switch c.LLMProvider {
	case "gemini":
		key = c.GeminiAPIKey
	case "openrouter":
		key = c.OpenRouterAPIKey
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if len(key) < 20 {
		return fmt.Errorf("valid API key for provider %q missing from environment", c.LLMProvider)
	}
	if c.ChatRateLimit <= 0 || c.ChatRateWindow <= 0 {
		return fmt.Errorf("chat rate limit and window must be positive")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
