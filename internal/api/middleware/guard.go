package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/admin-console/internal/api/metrics"
	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
	"github.com/marketplace/admin-console/internal/core/service"
)

// Context keys set for downstream handlers.
const (
	SessionKey = "session"
	StoreKey   = "store"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// RequireCapability guards a route with the session guard. The decision is
// taken by service.Decide; this middleware only applies it.
func RequireCapability(sessions ports.SessionService, capability domain.Capability) echo.MiddlewareFunc {
	return guard(sessions, func(c echo.Context, s domain.Session) service.Decision {
		return service.Decide(s, service.Requirement{
			Path:       c.Request().URL.RequestURI(),
			Capability: capability,
		})
	}, string(capability))
}

// RequireAuthenticated guards a route that any console user may open.
func RequireAuthenticated(sessions ports.SessionService) echo.MiddlewareFunc {
	return guard(sessions, func(c echo.Context, s domain.Session) service.Decision {
		return service.Decide(s, service.Requirement{Path: c.Request().URL.RequestURI()})
	}, "none")
}

// GuestOnly keeps authenticated users away from the login screen and the
// login submission.
func GuestOnly(sessions ports.SessionService) echo.MiddlewareFunc {
	return guard(sessions, func(_ echo.Context, s domain.Session) service.Decision {
		return service.DecideGuestOnly(s)
	}, "guest")
}

func guard(sessions ports.SessionService, decide func(echo.Context, domain.Session) service.Decision, label string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Expiry is reflected in the snapshot below; a network failure keeps
			// the current token and is retried on the next request.
			_ = sessions.EnsureFresh(c.Request().Context())

			s := sessions.Snapshot()
			d := decide(c, s)
			metrics.GuardDecisionsTotal.WithLabelValues(string(d.Verdict), label).Inc()

			if d.Verdict == service.Allow {
				c.Set(SessionKey, s)
				return next(c)
			}
			return ApplyDecision(c, d, s)
		}
	}
}

// ApplyDecision turns a non-allow decision into an HTTP response.
func ApplyDecision(c echo.Context, d service.Decision, s domain.Session) error {
	switch d.Verdict {
	case service.Pending:
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusAccepted, map[string]string{
			"status": "pending",
			"state":  string(s.State),
		})
	case service.RedirectToLogin:
		return c.Redirect(http.StatusFound, LoginPath+"?return_to="+url.QueryEscape(d.ReturnPath))
	case service.RedirectToUnauthorized:
		return c.Redirect(http.StatusFound, UnauthorizedPath)
	case service.RedirectToLanding:
		return c.Redirect(http.StatusFound, d.ReturnPath)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "unknown guard verdict")
}
