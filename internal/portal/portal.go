// Package portal serves the pages behind the route guard: either a proxy to
// the frontend or, without one, a minimal built-in page.
package portal

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"campus/internal/auth/session"
	"campus/pkg/requestcontext"
)

// New returns the page handler. An empty upstream selects the placeholder.
func New(upstream string, logger *slog.Logger) (http.Handler, error) {
	if upstream == "" {
		return Placeholder(), nil
	}
	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid UI upstream %q", upstream)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.ErrorContext(r.Context(), "ui upstream failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy, nil
}

var page = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="es">
<head><meta charset="utf-8"><title>Campus</title></head>
<body>
{{if .Email}}<p>Sesión de {{.Email}} ({{.Role}})</p>{{else}}<p>Sin sesión</p>{{end}}
<p>{{.Path}}</p>
</body>
</html>
`))

type pageData struct {
	Path  string
	Email string
	Role  string
}

// Placeholder renders the requested path and the guard's verified identity.
func Placeholder() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := pageData{Path: r.URL.Path}
		if claims := session.ClaimsFromContext(r.Context()); claims != nil {
			data.Email = claims.Email
			data.Role = claims.Role.String()
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = page.Execute(w, data)
	})
}
