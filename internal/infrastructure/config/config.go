// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"pilott-date-editor/internal/domain/entity"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Schema validation
	XSDPath              string
	UpdateSchema         string
	StaffingActionSchema string
	XMLLintPath          string
	ValidateOutput       bool

	// Output
	OutputDir       string
	MetricsTextfile string

	// Processing
	LoadWorkers     int
	DisplayTimezone string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		XSDPath:              getEnv("XSD_PATH", "resources/xsd/"),
		UpdateSchema:         getEnv("UPDATE_SCHEMA", entity.DefaultAssignmentSchemaName),
		StaffingActionSchema: getEnv("STAFFING_ACTION_SCHEMA", entity.DefaultStaffingActSchemaName),
		XMLLintPath:          getEnv("XMLLINT_PATH", "xmllint"),
		ValidateOutput:       getEnvAsBool("VALIDATE_OUTPUT", false),

		OutputDir:       getEnv("OUTPUT_DIR", "."),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),

		LoadWorkers:     getEnvAsInt("LOAD_WORKERS", 4),
		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Europe/Paris"),
	}

	if config.LoadWorkers < 1 {
		config.LoadWorkers = 1
	}

	return config, nil
}

// SchemaFor returns the schema file name used to check a generated packet kind
func (c *Config) SchemaFor(kind entity.PacketKind) string {
	if kind == entity.PacketStaffingAction {
		return c.StaffingActionSchema
	}
	return c.UpdateSchema
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
