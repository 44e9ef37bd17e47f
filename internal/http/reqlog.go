package httpx

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/TwiN/go-color"

	"github.com/meridianhq/meridian/config"
	"github.com/meridianhq/meridian/internal/domain/model"
)

const usernameColumn = 21

// pathCategories is the fixed ordered set of route-prefix categories used
// to colorize paths. First match wins; unmatched paths render unstyled.
var pathCategories = []struct {
	prefix string
	code   string
}{
	{"/api", color.Green},
	{"/download", color.Yellow},
	{"/moderation", color.Yellow},
	{"/report", color.Yellow},
	{"/statistics", color.Yellow},
	{"/register", color.Blue},
	{"/login", color.Blue},
	{"/place", color.Purple},
	{"/admin", color.Red},
}

// RequestLogger emits the human-facing console log: one line per request
// and one per unhandled error. It is purely observational and never
// affects control flow.
type RequestLogger struct {
	cfg  config.LoggingConfig
	out  io.Writer
	slog *slog.Logger
	now  func() time.Time
}

// NewRequestLogger constructs a RequestLogger writing to stdout.
func NewRequestLogger(cfg config.LoggingConfig, logger *slog.Logger) *RequestLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestLogger{
		cfg:  cfg,
		out:  os.Stdout,
		slog: logger,
		now:  time.Now,
	}
}

// Middleware returns the request-logging middleware. The line is written
// after the handler chain completes, so it reflects the response actually
// returned to the client, redirects included.
func (l *RequestLogger) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The holder makes the identity the session pipeline resolves
			// downstream visible to the log line written here. Deferring
			// the line keeps it on the console when a handler panics.
			r = r.WithContext(WithIdentityHolder(r.Context()))
			defer func() {
				l.LogRequest(UserFromContext(r.Context()), r.Method, requestPath(r))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LogRequest writes one request line: time (optional), user, method, path.
func (l *RequestLogger) LogRequest(user *model.User, method, path string) {
	if !l.cfg.Requests {
		return
	}

	parts := make([]string, 0, 4)
	if t := l.timestamp(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, userColumn(user), methodColumn(method), PathColour(path))
	fmt.Fprintln(l.out, strings.Join(parts, " "))
}

// LogError writes one line for an unhandled error. It must never panic;
// when formatted output is disabled the raw record goes to slog instead.
func (l *RequestLogger) LogError(user *model.User, err any) {
	if !l.cfg.FormattedErrors {
		l.slog.Error("unhandled error", "error", fmt.Sprint(err))
		return
	}

	parts := make([]string, 0, 3)
	if t := l.timestamp(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, userColumn(user), color.InRed(fmt.Sprint(err)))
	fmt.Fprintln(l.out, strings.Join(parts, " "))
}

func (l *RequestLogger) timestamp() string {
	if !l.cfg.Time {
		return ""
	}
	return color.InGray(l.now().Format("2006-01-02 15:04:05"))
}

// userColumn renders the username padded to a fixed column so the method
// lines up across entries.
func userColumn(user *model.User) string {
	if user == nil {
		return color.InYellow("Logged-out user") + strings.Repeat(" ", usernameColumn-len("Logged-out user"))
	}
	pad := usernameColumn - len(user.Username)
	if pad < 1 {
		pad = 1
	}
	return color.InBlue(user.Username) + strings.Repeat(" ", pad)
}

// methodColumn colorizes the two recognized methods; anything else passes
// through unstyled. Padded so paths line up.
func methodColumn(method string) string {
	pad := 7 - len(method)
	if pad < 1 {
		pad = 1
	}
	padding := strings.Repeat(" ", pad)
	switch method {
	case http.MethodGet:
		return color.InGreen(method) + padding
	case http.MethodPost:
		return color.InYellow(method) + padding
	default:
		return method + padding
	}
}

// PathColour applies the category style for the first matching route
// prefix. Same input path always yields the same category.
func PathColour(path string) string {
	for _, cat := range pathCategories {
		if strings.HasPrefix(path, cat.prefix) {
			return color.Colorize(cat.code, path)
		}
	}
	return path
}

// PathCategory returns the matched category prefix, or "" when the path is
// uncategorized. Split out from PathColour so determinism is testable
// without comparing escape codes.
func PathCategory(path string) string {
	for _, cat := range pathCategories {
		if strings.HasPrefix(path, cat.prefix) {
			return cat.prefix
		}
	}
	return ""
}

func requestPath(r *http.Request) string {
	path := r.URL.Path
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	return path
}
