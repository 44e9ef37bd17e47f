package httpx

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

// RouterServices holds what the downstream application routes need.
type RouterServices struct {
	Logger *slog.Logger
}

type router struct {
	logger *slog.Logger
}

// NewRouter creates the downstream application router the pipeline resolves
// into. Page-level form handlers live outside this module; these routes are
// the minimal navigable surface: the home page, the moderation review page,
// the API, and avatar serving.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rt := &router{logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rt.home)
	mux.HandleFunc("GET /moderation", rt.moderation)
	mux.HandleFunc("GET /api/status", rt.status)
	mux.HandleFunc("GET /api/avatar/{id}", rt.avatar)
	mux.HandleFunc("GET /healthz", rt.health)
	mux.HandleFunc("HEAD /healthz", rt.health)
	return mux
}

func (rt *router) home(w http.ResponseWriter, r *http.Request) {
	name := "there"
	if user := UserFromContext(r.Context()); user != nil {
		name = user.Username
	}
	writePage(w, "Home", fmt.Sprintf("<h1>Hi, %s!</h1>", template.HTMLEscapeString(name)))
}

func (rt *router) moderation(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Under review",
		"<h1>Your account is under moderation</h1>"+
			"<p>Review the action taken against your account and submit an appeal here.</p>")
}

func (rt *router) status(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "up"}
	if user := UserFromContext(r.Context()); user != nil {
		payload["username"] = user.Username
	}
	WriteJSON(w, http.StatusOK, payload)
}

// placeholderAvatar is a 1x1 transparent PNG served until the renderer
// pipeline publishes a real headshot for the user.
var placeholderAvatar = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (rt *router) avatar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	if _, err := w.Write(placeholderAvatar); err != nil {
		rt.logger.ErrorContext(r.Context(), "write avatar response", "error", err)
	}
}

func (rt *router) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte("ok"))
	}
}

func writePage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body>%s</body></html>",
		template.HTMLEscapeString(title), body)
}
