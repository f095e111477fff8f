package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

const (
	fieldAccessToken  = "accessToken"
	fieldRefreshToken = "refreshToken"
	fieldUser         = "serializedUser"
)

// CredentialStore keeps the console's credentials in one Redis hash per
// installation.
// Key format: <prefix>:<installation_id>:credentials
type CredentialStore struct {
	client *redis.Client
	key    string
	sealer *Sealer
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates a store. A nil sealer stores values in clear.
func NewCredentialStore(client *redis.Client, prefix, installationID string, sealer *Sealer) *CredentialStore {
	return &CredentialStore{
		client: client,
		key:    fmt.Sprintf("%s:%s:credentials", prefix, installationID),
		sealer: sealer,
	}
}

// Load returns (nil, nil) when nothing is stored.
func (s *CredentialStore) Load(ctx context.Context) (*domain.Credentials, error) {
	vals, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	access, err := s.open(vals[fieldAccessToken])
	if err != nil {
		return nil, fmt.Errorf("load credentials: access token: %w", err)
	}
	refresh, err := s.open(vals[fieldRefreshToken])
	if err != nil {
		return nil, fmt.Errorf("load credentials: refresh token: %w", err)
	}

	creds := &domain.Credentials{AccessToken: access, RefreshToken: refresh}
	if raw := vals[fieldUser]; raw != "" {
		var user domain.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("load credentials: decode user: %w", err)
		}
		creds.User = &user
	}
	return creds, nil
}

// Save replaces the stored credentials in a single MULTI/EXEC.
func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	access, err := s.seal(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	refresh, err := s.seal(creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	fields := map[string]any{
		fieldAccessToken:  access,
		fieldRefreshToken: refresh,
	}
	if creds.User != nil {
		raw, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("save credentials: encode user: %w", err)
		}
		fields[fieldUser] = string(raw)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Clear removes the stored credentials.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) seal(v string) (string, error) {
	if s.sealer == nil || v == "" {
		return v, nil
	}
	return s.sealer.Seal(v)
}

func (s *CredentialStore) open(v string) (string, error) {
	if s.sealer == nil || v == "" {
		return v, nil
	}
	return s.sealer.Open(v)
}
