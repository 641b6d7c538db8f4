package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// InputPath is the JSONL file produced by the scraping stage.
	InputPath string
	// DuckDBPath is the file backing the analytical store.
	DuckDBPath string

	// StorageBackend selects the destination: "duckdb" (default) or "postgres".
	StorageBackend string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// RawCSVAuditPath, when non-empty, receives a CSV copy of the raw
	// batch before filtering.
	RawCSVAuditPath string

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		InputPath:  getEnv("INPUT_PATH", "data/input/scraping_data.jsonl"),
		DuckDBPath: getEnv("DUCKDB_PATH", "data/output/data.duckdb"),

		StorageBackend: getEnv("STORAGE_BACKEND", "duckdb"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "etl"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "etl123"),
		PostgresDB:       getEnv("POSTGRES_DB", "property_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RawCSVAuditPath: getEnv("RAW_CSV_AUDIT_PATH", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
