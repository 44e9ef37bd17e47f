package httpx

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridianhq/meridian/internal/domain/model"
)

const closingBodyTag = "</body>"

// Decorate returns the middleware that injects the user's theme stylesheet
// (and, when present, their custom CSS) into outgoing HTML documents. The
// response is fully buffered so decoration works on an independent copy of
// the body; non-HTML responses pass through byte-identical with status and
// headers untouched.
func Decorate(themes *ThemeLibrary) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := &bufferedResponse{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(buf, r)
			buf.emit(themes, UserFromContext(r.Context()))
		})
	}
}

// bufferedResponse holds the downstream handler's output until the request
// completes, deferring the header write so the body can still be swapped.
type bufferedResponse struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.body.Write(p)
}

// emit writes the buffered response to the underlying writer, decorating
// HTML documents on the way out.
func (b *bufferedResponse) emit(themes *ThemeLibrary, user *model.User) {
	out := b.body.Bytes()

	if isHTML(b.Header().Get("Content-Type")) {
		themeCSS, userCSS := themes.StylesFor(user)
		decorated := InjectStyles(out, themeCSS, userCSS)
		if len(decorated) != len(out) && b.Header().Get("Content-Length") != "" {
			b.Header().Set("Content-Length", strconv.Itoa(len(decorated)))
		}
		out = decorated
	}

	b.ResponseWriter.WriteHeader(b.status)
	if len(out) > 0 {
		// Write errors here mean the client went away; nothing to do.
		_, _ = b.ResponseWriter.Write(out)
	}
}

func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html")
}

// InjectStyles returns a new document with a theme style block and an
// optional custom-CSS block inserted immediately before the first closing
// body tag. Documents without one pass through unchanged; that is a
// defined degenerate case, not a failure.
func InjectStyles(doc []byte, themeCSS, userCSS string) []byte {
	idx := bytes.Index(doc, []byte(closingBodyTag))
	if idx < 0 {
		return doc
	}

	var styles strings.Builder
	styles.WriteString("<style>")
	styles.WriteString(themeCSS)
	styles.WriteString("</style>")
	if userCSS != "" {
		styles.WriteString(`<style id="custom-css">`)
		styles.WriteString(userCSS)
		styles.WriteString("</style>")
	}

	out := make([]byte, 0, len(doc)+styles.Len())
	out = append(out, doc[:idx]...)
	out = append(out, styles.String()...)
	out = append(out, doc[idx:]...)
	return out
}
