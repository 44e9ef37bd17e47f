package config

import "time"

const defaultStipendInterval = 12 * time.Hour

// StipendConfig points at the economy service that owns stipend credits.
// The economy service enforces the actual credit interval; Interval here
// only throttles how often the pipeline bothers dispatching the request.
type StipendConfig struct {
	// BaseURL is the economy service base URL.
	BaseURL string `env:"ECONOMY_URL" envDefault:"http://localhost:2009"`

	// Interval is the minimum time between credit dispatches per user.
	Interval time.Duration `env:"INTERVAL" envDefault:"12h"`

	// Timeout bounds each credit request so a slow collaborator cannot
	// stall the response.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"3s"`
}

// Sanitize applies guardrails to stipend configuration values.
func (s *StipendConfig) Sanitize() {
	if s.Interval <= 0 {
		s.Interval = defaultStipendInterval
	}
	if s.Timeout <= 0 {
		s.Timeout = 3 * time.Second
	}
}
