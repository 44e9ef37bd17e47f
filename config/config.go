package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and Redis configuration
//   - http.go: HTTP server configuration
//   - session.go: Session cookie and rotation configuration
//   - logging.go: Request/error log configuration
//   - themes.go: Theme asset configuration
//   - stipend.go: Economy (stipend) collaborator configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Session cookie and rotation configuration
	Session SessionConfig `envPrefix:"SESSION_"`

	// Request/error log configuration
	Logging LoggingConfig `envPrefix:"LOG_"`

	// Theme asset configuration
	Themes ThemesConfig `envPrefix:"THEMES_"`

	// Economy (stipend) collaborator configuration
	Stipend StipendConfig `envPrefix:"STIPEND_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Session.Sanitize()
	c.Stipend.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// Validate checks the parts of the configuration that must fail fast at
// startup rather than per-request.
func (c *AppConfig) Validate() error {
	return c.Themes.Validate()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
