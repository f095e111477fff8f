package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/admin-console/internal/api/metrics"
	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

// storeUnavailableResponse is the panel rendered in place of a blocked
// merchant screen.
type storeUnavailableResponse struct {
	Error     string   `json:"error"`
	State     string   `json:"state"`
	Status    string   `json:"status,omitempty"`
	Message   string   `json:"message"`
	NextSteps []string `json:"next_steps"`
}

// RequireActiveStore runs the resource validity gate after RequireCapability.
// A blocked store is rendered in place; the user is authorized for the route.
// An expired token gets one refresh and retry.
func RequireActiveStore(sessions ports.SessionService, gate ports.StoreGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			s, ok := c.Get(SessionKey).(domain.Session)
			if !ok {
				s = sessions.Snapshot()
			}

			check, err := gate.Check(ctx, s, false)
			if errors.Is(err, domain.ErrSessionExpired) {
				if err = sessions.Refresh(ctx); err == nil {
					s = sessions.Snapshot()
					c.Set(SessionKey, s)
					check, err = gate.Check(ctx, s, false)
				}
			}

			var unavailable *domain.StoreUnavailableError
			switch {
			case err == nil:
				metrics.StoreGateChecksTotal.WithLabelValues(string(check.State)).Inc()
				c.Set(StoreKey, check)
				return next(c)
			case errors.As(err, &unavailable):
				metrics.StoreGateChecksTotal.WithLabelValues(string(check.State)).Inc()
				return c.JSON(http.StatusLocked, storeUnavailableResponse{
					Error:     "store unavailable",
					State:     string(unavailable.State),
					Status:    string(unavailable.Status),
					Message:   unavailable.Message(),
					NextSteps: unavailable.NextSteps(),
				})
			case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrNotAuthenticated):
				metrics.StoreGateChecksTotal.WithLabelValues("error").Inc()
				return c.Redirect(http.StatusFound, LoginPath+"?return_to="+url.QueryEscape(c.Request().URL.RequestURI()))
			default:
				metrics.StoreGateChecksTotal.WithLabelValues("error").Inc()
				return err
			}
		}
	}
}
