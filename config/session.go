package config

import "time"

const (
	minSessionLifetime = time.Hour
	defaultLifetime    = 30 * 24 * time.Hour
)

// SessionConfig controls the session cookie and silent token rotation.
type SessionConfig struct {
	// CookieName is the name of the cookie carrying the session token.
	CookieName string `env:"COOKIE_NAME" envDefault:"meridian_session"`

	// Lifetime is the total lifetime of a session token.
	Lifetime time.Duration `env:"LIFETIME" envDefault:"720h"`

	// RenewWithin is the remaining-lifetime window inside which a
	// validation rotates the token. Must be shorter than Lifetime.
	RenewWithin time.Duration `env:"RENEW_WITHIN" envDefault:"360h"`

	// CookieSecure sets the Secure attribute on issued cookies.
	// Disable only for plain-HTTP local development.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.Lifetime < minSessionLifetime {
		s.Lifetime = defaultLifetime
	}
	if s.RenewWithin <= 0 || s.RenewWithin >= s.Lifetime {
		s.RenewWithin = s.Lifetime / 2
	}
	if s.CookieName == "" {
		s.CookieName = "meridian_session"
	}
}
