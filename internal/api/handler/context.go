package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/admin-console/internal/api/middleware"
	"github.com/marketplace/admin-console/internal/core/domain"
)

// ctxSession extracts the session snapshot injected by the guard middleware.
// Its presence proves the guard ran and allowed the request.
func ctxSession(c echo.Context) (domain.Session, error) {
	s, ok := c.Get(middleware.SessionKey).(domain.Session)
	if !ok || s.User == nil {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}

// ctxStore returns the store verdict set by RequireActiveStore, if any.
func ctxStore(c echo.Context) *domain.StoreCheck {
	check, ok := c.Get(middleware.StoreKey).(domain.StoreCheck)
	if !ok {
		return nil
	}
	return &check
}
