package config

// LoggingConfig gates the human-facing request and error logs.
// The structured slog diagnostics are always on; these flags only control
// the colorized per-request console output.
type LoggingConfig struct {
	// Time prefixes each request line with a timestamp.
	Time bool `env:"TIME" envDefault:"true"`

	// Requests enables the per-request log line.
	Requests bool `env:"REQUESTS" envDefault:"true"`

	// FormattedErrors renders unhandled errors with time/user/color
	// formatting instead of the raw structured record.
	FormattedErrors bool `env:"FORMATTED_ERRORS" envDefault:"true"`
}
