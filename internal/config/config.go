package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Primary backend (Supabase PostgREST)
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Spreadsheet fallback for client records
	SheetID    string
	SheetKey   string
	SheetRange string

	// Flat-file fallback for client records
	ClientsFilePath string

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// CORS
	AllowedOrigins string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		SheetID:  getEnv("GOOGLE_SHEET_ID", ""),
		SheetKey: getEnv("GOOGLE_API_KEY", ""),
		// Tab and columns covering the 8 expected headers:
		// email, password, authorized, name, billingAddress, phoneNumber,
		// purchases, payments.
		SheetRange: getEnv("GOOGLE_SHEET_RANGE", "Clients!A:H"),

		ClientsFilePath: getEnv("CLIENTS_FILE_PATH", "data/clients.json"),

		CacheTTL: getEnvDuration("CACHE_TTL", 30*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// UseSupabase reports whether the primary backend is configured.
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// UseSheet reports whether the spreadsheet fallback is configured.
func (c *Config) UseSheet() bool {
	return c.SheetID != "" && c.SheetKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
