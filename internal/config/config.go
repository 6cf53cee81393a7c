// Package config provides configuration management for the console server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/demexconsole/console/internal/dispatch"
)

// Config holds all configuration values for the server.
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Show persistence
	DatabaseURL string
	ShowFile    string

	// Render loop
	TickRate time.Duration

	// Output transports (Art-Net/serial/debug), one Worker per entry.
	Outputs []dispatch.Config

	// Non-interactive mode (for headless/CI runs)
	NonInteractive bool

	// CORS configuration
	CORSOrigin string
}

// Load loads configuration from environment variables with sensible
// defaults. It first loads a .env file if one is present in the working
// directory; a missing .env is not an error, since production deploys set
// the environment directly.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "7700"),
		Env:  getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", "file:./console.db"),
		ShowFile:    getEnv("SHOW_FILE", "./show.yaml"),

		TickRate: time.Second / time.Duration(getEnvInt("CONSOLE_TICK_RATE_HZ", 60)),

		Outputs: dispatch.ConfigFromEnv(),

		NonInteractive: getEnvBool("NON_INTERACTIVE", false),

		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
