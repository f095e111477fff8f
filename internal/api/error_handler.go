package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketplace/admin-console/internal/core/domain"
)

// errorResponse is the canonical error envelope for all console errors.
type errorResponse struct {
	Error     string   `json:"error"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the session error taxonomy to HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var unavailable *domain.StoreUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return http.StatusLocked, errorResponse{Error: unavailable.Message(), NextSteps: unavailable.NextSteps()}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusLocked, errorResponse{Error: domain.MsgNoStore}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: domain.MsgInvalidCredentials}
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, errorResponse{Error: domain.MsgSessionExpired}
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not signed in"}
	case errors.Is(err, domain.ErrInsufficientPermission):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrAlreadyAuthenticated):
		return http.StatusConflict, errorResponse{Error: "already signed in"}
	case errors.Is(err, domain.ErrLoginInProgress):
		return http.StatusConflict, errorResponse{Error: "a sign-in is already in progress"}
	case errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict, errorResponse{Error: "the session changed while the request was running"}
	case errors.Is(err, domain.ErrNetwork):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unavailable")
		return http.StatusServiceUnavailable, errorResponse{Error: domain.MsgNetwork}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
