package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig
	Pricing  PricingConfig
	Database DatabaseConfig
}

// PathsConfig groups the directories and files a batch run touches.
type PathsConfig struct {
	InvoiceDir   string // incoming vendor invoice PDFs
	ReviewedDir  string // reviewed spreadsheets ready for catalog sync
	OutputDir    string // generated review spreadsheets
	AuditOKPath  string // success audit log (CSV)
	AuditErrPath string // error audit log (CSV)
}

type PricingConfig struct {
	MarginPercent int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Paths: PathsConfig{
			InvoiceDir:   getEnv("INVOICE_DIR", "files_repo"),
			ReviewedDir:  getEnv("REVIEWED_DIR", "files_repo/comprobados"),
			OutputDir:    getEnv("OUTPUT_DIR", "out"),
			AuditOKPath:  getEnv("AUDIT_OK_PATH", "log_ok.csv"),
			AuditErrPath: getEnv("AUDIT_ERR_PATH", "log_errores.csv"),
		},
		Pricing: PricingConfig{
			MarginPercent: getEnvAsInt("MARGIN_PERCENT", 20),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "catalog-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
	}

	if cfg.Pricing.MarginPercent <= 0 || cfg.Pricing.MarginPercent >= 100 {
		return nil, errors.New("MARGIN_PERCENT must be between 1 and 99")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
