package ports

import (
	"context"

	"github.com/marketplace/admin-console/internal/core/domain"
)

// AuthResult is a successful response of the auth service. User is nil when
// the endpoint does not echo the user back (refresh).
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

// AuthClient is the external auth service. Implementations normalize every
// failure into domain.ErrInvalidCredentials, domain.ErrSessionExpired or
// domain.ErrNetwork.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Me(ctx context.Context, accessToken string) (*domain.User, error)
	Logout(ctx context.Context, accessToken string) error
}

// SessionService is the only writer of the process-wide session.
type SessionService interface {
	RestoreSession(ctx context.Context) error
	Login(ctx context.Context, email, password string) (bool, error)
	Logout(ctx context.Context)
	Refresh(ctx context.Context) error
	EnsureFresh(ctx context.Context) error
	Snapshot() domain.Session
	Subscribe(fn func(domain.Session)) (unsubscribe func())
}
