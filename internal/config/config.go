package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int
	AutoMigrate bool

	// Admin dashboard auth
	AdminJWTSecret      string
	AdminTokenTTL       time.Duration
	LoginRateLimitRPS   float64
	LoginRateLimitBurst int
	CORSAllowedOrigins  []string
	// Honour X-Forwarded-For / X-Real-IP. Only set behind a proxy that overwrites them.
	TrustProxyHeaders   bool

	// WhatsApp relay
	WhatsAppBridgeURL   string
	WhatsAppCountryCode string
	NotifyTimeout       time.Duration

	// Clinic calendar
	ClinicTimezone string
}

// LoadDotEnv loads variables from .env style files without overriding the
// process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvAsInt("DB_MAX_CONNS", 10),
		DBMinConns:  getEnvAsInt("DB_MIN_CONNS", 1),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", false),

		AdminJWTSecret:      getEnv("ADMIN_JWT_SECRET", ""),
		AdminTokenTTL:       getEnvAsDuration("ADMIN_TOKEN_TTL", 60*time.Minute),
		LoginRateLimitRPS:   getEnvAsFloat("LOGIN_RATE_LIMIT_RPS", 1),
		LoginRateLimitBurst: getEnvAsInt("LOGIN_RATE_LIMIT_BURST", 5),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustProxyHeaders:   getEnvAsBool("TRUST_PROXY_HEADERS", false),

		WhatsAppBridgeURL:   getEnv("WHATSAPP_BRIDGE_URL", "http://localhost:8080/api/send"),
		WhatsAppCountryCode: getEnv("WHATSAPP_COUNTRY_CODE", "91"),
		NotifyTimeout:       getEnvAsDuration("NOTIFY_TIMEOUT", 3*time.Second),

		ClinicTimezone: getEnv("CLINIC_TIMEZONE", "Asia/Kolkata"),
	}
}

// Location resolves the clinic timezone. The zone database is embedded, so
// only a misspelt name fails; the host zone is returned with the error.
func (c *Config) Location() (*time.Location, error) {
	if c == nil || strings.TrimSpace(c.ClinicTimezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.ClinicTimezone))
	if err != nil {
		return time.Local, fmt.Errorf("config: clinic timezone %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
