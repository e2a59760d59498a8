package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "AXIOM_TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "AXIOM_TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "AXIOM_TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "AXIOM_TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "AXIOM_TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsListOrDefault(t *testing.T) {
	def := []string{"http://localhost:5173"}

	tests := []struct {
		name     string
		envValue string
		expected []string
	}{
		{"splits and trims", " https://a.example , https://b.example ", []string{"https://a.example", "https://b.example"}},
		{"uses default for blank", "   ", def},
		{"uses default for only commas", ",,", def},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("AXIOM_TEST_LIST", tc.envValue)

			result := getEnvAsListOrDefault("AXIOM_TEST_LIST", def)
			if !reflect.DeepEqual(result, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("AXIOM_NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("AXIOM_NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("AXIOM_TEST_REQUIRED", "value123")

	result := mustGetEnv("AXIOM_TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/axiom")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("CHAT_RATE_LIMIT", "")
	t.Setenv("CHAT_RATE_WINDOW_SECONDS", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := Load()

	if cfg.ChatRateLimit != 5 {
		t.Errorf("expected chat rate limit 5, got %d", cfg.ChatRateLimit)
	}
	if cfg.ChatRateWindow != time.Minute {
		t.Errorf("expected chat window 1m, got %s", cfg.ChatRateWindow)
	}
	if cfg.AccessTokenExpiry != 30*time.Minute {
		t.Errorf("expected token expiry 30m, got %s", cfg.AccessTokenExpiry)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("expected default provider gemini, got %q", cfg.LLMProvider)
	}
}

func TestValidate(t *testing.T) {
	longKey := "k-0123456789abcdefghij"

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini with key", Config{LLMProvider: "gemini", GeminiAPIKey: longKey, ChatRateLimit: 5, ChatRateWindow: time.Minute, MaxImageBytes: 5 << 20}, false},
		{"openrouter with key", Config{LLMProvider: "openrouter", OpenRouterAPIKey: longKey, ChatRateLimit: 5, ChatRateWindow: time.Minute, MaxImageBytes: 5 << 20}, false},
		{"short key", Config{LLMProvider: "gemini", GeminiAPIKey: "short", ChatRateLimit: 5, ChatRateWindow: time.Minute, MaxImageBytes: 5 << 20}, true},
		{"key for other provider", Config{LLMProvider: "openrouter", GeminiAPIKey: longKey, ChatRateLimit: 5, ChatRateWindow: time.Minute, MaxImageBytes: 5 << 20}, true},
		{"unknown provider", Config{LLMProvider: "anthropic", ChatRateLimit: 5, ChatRateWindow: time.Minute, MaxImageBytes: 5 << 20}, true},
		{"zero rate limit", Config{LLMProvider: "gemini", GeminiAPIKey: longKey, ChatRateWindow: time.Minute, MaxImageBytes: 5 << 20}, true},
		{"zero image limit", Config{LLMProvider: "gemini", GeminiAPIKey: longKey, ChatRateLimit: 5, ChatRateWindow: time.Minute}, true},
		{"negative image limit", Config{LLMProvider: "gemini", GeminiAPIKey: longKey, ChatRateLimit: 5, ChatRateWindow: time.Minute, MaxImageBytes: -1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
