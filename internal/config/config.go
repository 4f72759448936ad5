package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string

	// APPPassword gates the HTTP surface. Empty disables authentication.
	AppPassword string

	Database DatabaseConfig
	Gemini   GeminiConfig
	Search   SearchConfig
	Stock    StockConfig
	ERP      ERPConfig

	// VocabFile optionally overrides the built-in domain vocabulary
	// (wood families, color families, finish groups, web keywords).
	VocabFile string

	// BundledDir holds the preloaded spreadsheets (similarity table, stock).
	BundledDir string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// GeminiConfig holds reasoning-engine configuration
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// SearchConfig holds text-matcher and web-search configuration
type SearchConfig struct {
	BraveAPIKey    string
	FuzzyThreshold float64
	MaxResults     int
}

// StockConfig holds stock policy configuration
type StockConfig struct {
	MinStock        float64
	PrimaryLocation string
	TapeMetersRoll  float64
}

// ERPConfig holds the optional Odoo-style ERP stock source
type ERPConfig struct {
	URL          string
	Database     string
	Username     string
	Password     string
	SyncInterval int // minutes
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" && os.Getenv("APP_PASSWORD") != "" {
		return nil, fmt.Errorf("JWT_SECRET is required when APP_PASSWORD is set")
	}

	return &Config{
		NodeEnv:     getEnv("NODE_ENV", "development"),
		Port:        getEnv("PORT", "3210"),
		JWTSecret:   jwtSecret,
		AppPassword: os.Getenv("APP_PASSWORD"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "mdfcopilot"),
		},
		Gemini: GeminiConfig{
			APIKey:    os.Getenv("GEMINI_API_KEY"),
			Model:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			MaxTokens: getEnvInt("GEMINI_MAX_TOKENS", 4096),
		},
		Search: SearchConfig{
			BraveAPIKey:    os.Getenv("BRAVE_API_KEY"),
			FuzzyThreshold: getEnvFloat("FUZZY_MATCH_THRESHOLD", 0.6),
			MaxResults:     getEnvInt("MAX_SEARCH_RESULTS", 10),
		},
		Stock: StockConfig{
			MinStock:        getEnvFloat("DEFAULT_MIN_STOCK", 1.0),
			PrimaryLocation: getEnv("PRIMARY_LOCATION", "principal"),
			TapeMetersRoll:  getEnvFloat("TAPE_METERS_PER_ROLL", 20),
		},
		ERP: ERPConfig{
			URL:          os.Getenv("ERP_URL"),
			Database:     os.Getenv("ERP_DATABASE"),
			Username:     os.Getenv("ERP_USERNAME"),
			Password:     os.Getenv("ERP_PASSWORD"),
			SyncInterval: getEnvInt("ERP_SYNC_INTERVAL", 60),
		},
		VocabFile:  os.Getenv("VOCAB_FILE"),
		BundledDir: getEnv("BUNDLED_DIR", "./data/bundled"),
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
