package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// Provider credentials are read once at startup and never mutated.
type Config struct {
	AppEnv             string
	Port               string
	GeminiAPIKey       string
	GeminiBaseURL      string
	ImagenModel        string
	GeminiEditModel    string
	StabilityAPIKey    string
	StabilityBaseURL   string
	StabilityEngine    string
	GenerateTimeout    time.Duration
	StylizeTimeout     time.Duration
	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ImagenModel:        getEnv("IMAGEN_MODEL", "imagen-4.0-generate-001"),
		GeminiEditModel:    getEnv("GEMINI_EDIT_MODEL", "gemini-2.5-flash-image-preview"),
		StabilityAPIKey:    strings.TrimSpace(os.Getenv("STABILITY_API_KEY")),
		StabilityBaseURL:   getEnv("STABILITY_BASE_URL", "https://api.stability.ai"),
		StabilityEngine:    getEnv("STABILITY_ENGINE", "stable-diffusion-xl-1024-v1-0"),
		GenerateTimeout:    time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 90)),
		StylizeTimeout:     time.Second * time.Duration(getEnvInt("STYLIZE_TIMEOUT_SECONDS", 120)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 150)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.GenerateTimeout <= 0 || cfg.StylizeTimeout <= 0 {
		return nil, fmt.Errorf("provider timeouts must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return cfg, nil
}

// MissingCredentials names the provider keys that are not set.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.StabilityAPIKey == "" {
		missing = append(missing, "STABILITY_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
