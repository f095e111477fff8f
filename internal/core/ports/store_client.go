package ports

import (
	"context"

	"github.com/marketplace/admin-console/internal/core/domain"
)

// StoreClient fetches a merchant's store from the marketplace API.
// A store that does not exist is reported as domain.ErrStoreUnavailable.
type StoreClient interface {
	GetStore(ctx context.Context, accessToken, storeID string) (*domain.StoreResource, error)
}

// StoreGate is the resource validity gate as seen by the console.
type StoreGate interface {
	Check(ctx context.Context, session domain.Session, refresh bool) (domain.StoreCheck, error)
	Invalidate()
}
