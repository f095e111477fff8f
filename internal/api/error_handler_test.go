package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketplace/admin-console/internal/core/domain"
)

func TestResolveError_Taxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"session expired", fmt.Errorf("%w: revoked", domain.ErrSessionExpired), http.StatusUnauthorized},
		{"already signed in", domain.ErrAlreadyAuthenticated, http.StatusConflict},
		{"login in progress", domain.ErrLoginInProgress, http.StatusConflict},
		{"cancelled wait", fmt.Errorf("%w: %w", domain.ErrNetwork, context.Canceled), http.StatusServiceUnavailable},
		{"store blocked", &domain.StoreUnavailableError{State: domain.StoreGateMissing}, http.StatusLocked},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if got, _ := resolveError(tt.err, zerolog.Nop(), c); got != tt.want {
				t.Fatalf("resolveError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
