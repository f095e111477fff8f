package ports

import (
	"context"

	"github.com/marketplace/admin-console/internal/core/domain"
)

// SessionEventRepository stores the session audit trail.
type SessionEventRepository interface {
	InsertEvent(ctx context.Context, e *domain.SessionEvent) error
}

// SessionAuditor receives lifecycle events without blocking the caller.
type SessionAuditor interface {
	Record(e domain.SessionEvent)
}
