package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

// StoreClient implements ports.StoreClient over GET /stores/{id}.
type StoreClient struct {
	*Client
}

var _ ports.StoreClient = (*StoreClient)(nil)

func NewStoreClient(c *Client) *StoreClient {
	return &StoreClient{Client: c}
}

// GetStore accepts both the {success, data} envelope and a bare store object.
func (c *StoreClient) GetStore(ctx context.Context, accessToken, storeID string) (*domain.StoreResource, error) {
	resp, err := c.do(ctx, http.MethodGet, "/stores/"+url.PathEscape(storeID), accessToken, nil)
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, domain.ErrSessionExpired
	case http.StatusNotFound:
		return nil, fmt.Errorf("store %s: %w", storeID, domain.ErrStoreUnavailable)
	default:
		return nil, unexpected(resp)
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(resp.body)
	if len(env.Data) > 0 && string(env.Data) != "null" {
		raw = env.Data
	}

	var store domain.StoreResource
	if err := json.Unmarshal(raw, &store); err != nil {
		return nil, fmt.Errorf("%w: decode store: %v", domain.ErrNetwork, err)
	}
	if store.Status == "" {
		return nil, fmt.Errorf("%w: store %s without status", domain.ErrNetwork, storeID)
	}
	if store.ID == "" {
		store.ID = storeID
	}
	return &store, nil
}
