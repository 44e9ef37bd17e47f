package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhq/meridian/config"
	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/domain/model"
)

func testThemeLibrary(t *testing.T) *ThemeLibrary {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard.css"), []byte("body{color:#111}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "darken.css"), []byte("body{color:#eee}"), 0o600))

	themes, err := LoadThemes(config.ThemesConfig{
		Dir:   dir,
		Paths: map[int]string{0: "standard.css", 1: "darken.css"},
	})
	require.NoError(t, err)
	return themes
}

func identityRequest(method, target string, user *model.User) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if user == nil {
		return req
	}
	sess := &domainauth.Session{
		Token:     "tok",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(WithIdentity(req.Context(), sess, user))
}

func TestDecorate_InjectsThemeBeforeClosingBody(t *testing.T) {
	themes := testThemeLibrary(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>hi</p></body></html>")
	})

	handler := Decorate(themes)(next)
	user := &model.User{ID: "u-1", Username: "ada", Theme: 1}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/", user))

	body := w.Body.String()
	assert.Equal(t,
		"<html><body><p>hi</p><style>body{color:#eee}</style></body></html>",
		body)
}

func TestDecorate_CustomCSSBlockOnlyWhenPresent(t *testing.T) {
	themes := testThemeLibrary(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<body></body>")
	})
	handler := Decorate(themes)(next)

	withCSS := &model.User{ID: "u-1", Theme: 0, CSS: "p{display:none}"}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/", withCSS))
	assert.Contains(t, w.Body.String(), `<style id="custom-css">p{display:none}</style></body>`)

	withoutCSS := &model.User{ID: "u-2", Theme: 0}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/", withoutCSS))
	assert.NotContains(t, w.Body.String(), "custom-css")
}

func TestDecorate_AnonymousGetsDefaultTheme(t *testing.T) {
	themes := testThemeLibrary(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<body></body>")
	})

	handler := Decorate(themes)(next)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/", nil))

	assert.Contains(t, w.Body.String(), "<style>body{color:#111}</style>")
	assert.NotContains(t, w.Body.String(), "custom-css")
}

func TestDecorate_NonHTMLPassesThroughByteIdentical(t *testing.T) {
	themes := testThemeLibrary(t)
	payload := `{"body":"</body>"}`
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, payload)
	})

	handler := Decorate(themes)(next)
	user := &model.User{ID: "u-1", Theme: 1, CSS: "p{}"}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodPost, "/api/status", user))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, payload, w.Body.String())
}

func TestDecorate_HTMLWithoutClosingBodyUnchanged(t *testing.T) {
	themes := testThemeLibrary(t)
	fragment := "<p>partial fragment</p>"
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fragment)
	})

	handler := Decorate(themes)(next)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/", &model.User{ID: "u-1"}))

	assert.Equal(t, fragment, w.Body.String())
}

func TestDecorate_PreservesStatusAndHeaders(t *testing.T) {
	themes := testThemeLibrary(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("X-Custom", "kept")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<body>missing</body>")
	})

	handler := Decorate(themes)(next)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "kept", w.Header().Get("X-Custom"))
	assert.Contains(t, w.Body.String(), "<style>")
}

func TestDecorate_UpdatesExplicitContentLength(t *testing.T) {
	themes := testThemeLibrary(t)
	doc := "<body></body>"
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
		fmt.Fprint(w, doc)
	})

	handler := Decorate(themes)(next)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, identityRequest(http.MethodGet, "/", nil))

	assert.Equal(t, strconv.Itoa(w.Body.Len()), w.Header().Get("Content-Length"))
}

func TestInjectStyles_FirstClosingTagWins(t *testing.T) {
	doc := []byte("<body>a</body><template></body></template>")
	out := InjectStyles(doc, "x{}", "")
	assert.Equal(t, "<body>a<style>x{}</style></body><template></body></template>", string(out))
}

func TestInjectStyles_NoTagReturnsInput(t *testing.T) {
	doc := []byte("no markup here")
	assert.Equal(t, doc, InjectStyles(doc, "x{}", "y{}"))
}
