package ports

import (
	"context"

	"github.com/marketplace/admin-console/internal/core/domain"
)

// CredentialStore persists the session's credentials across process restarts,
// scoped to one console installation. Save and Clear are each atomic.
type CredentialStore interface {
	// Load returns (nil, nil) when nothing is stored.
	Load(ctx context.Context) (*domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	Clear(ctx context.Context) error
}
