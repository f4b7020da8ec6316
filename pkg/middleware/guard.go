package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/Astemirdum/my-little-library/pkg/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	LoginPath     = "/login"
	SignupPath    = "/signup"
	DashboardPath = "/dashboard"
)

type GuardConfig struct {
	// AllowAnonymousSignup lets visitors without a session reach /signup.
	AllowAnonymousSignup bool
	Skipper              middleware.Skipper
}

// Decision is empty when the request may proceed.
type Decision struct {
	RedirectTo string
}

func (d Decision) Proceed() bool {
	return d.RedirectTo == ""
}

// Guard is the pure routing rule set; the first matching rule wins.
func Guard(p string, hasSession bool, cfg GuardConfig) Decision {
	switch {
	case !hasSession && underDashboard(p):
		return Decision{RedirectTo: LoginPath}
	case !hasSession && p == SignupPath && !cfg.AllowAnonymousSignup:
		return Decision{RedirectTo: LoginPath}
	case hasSession && p == LoginPath:
		return Decision{RedirectTo: DashboardPath}
	}
	return Decision{}
}

func underDashboard(p string) bool {
	return p == DashboardPath || strings.HasPrefix(p, DashboardPath+"/")
}

var (
	skippedPrefixes = []string{"/api/", "/static/", "/_next/static/", "/_next/image", "/swagger/"}
	skippedPaths    = map[string]struct{}{
		"/api":           {},
		"/favicon.ico":   {},
		"/manage/health": {},
	}
	skippedExts = map[string]struct{}{
		".svg": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
	}
)

// DefaultGuardSkipper bypasses API routes, static assets and images.
func DefaultGuardSkipper(c echo.Context) bool {
	return skipPath(c.Request().URL.Path)
}

func skipPath(p string) bool {
	if _, ok := skippedPaths[p]; ok {
		return true
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	_, ok := skippedExts[strings.ToLower(path.Ext(p))]
	return ok
}

// SessionGuard refreshes the session cookie on every request and redirects
// according to Guard. A tampered or expired cookie is cleared and the request
// is treated as anonymous.
func SessionGuard(mgr *session.Manager, cfg GuardConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = DefaultGuardSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			req := c.Request()
			state, payload := mgr.Update(c.Response(), req)
			hasSession := state == session.Refreshed

			if d := Guard(req.URL.Path, hasSession, cfg); !d.Proceed() {
				return c.Redirect(http.StatusTemporaryRedirect, d.RedirectTo)
			}
			if hasSession {
				c.SetRequest(req.WithContext(session.ContextWithUserID(req.Context(), payload.UserID)))
			}
			return next(c)
		}
	}
}
