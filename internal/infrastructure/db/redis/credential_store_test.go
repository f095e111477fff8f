package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/admin-console/internal/core/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr(), MaxElapsed: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	key := make([]byte, sealKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	s, err := NewSealer(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	return s
}

func sampleCredentials() domain.Credentials {
	return domain.Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: &domain.User{
			ID: "u-1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleMerchant, Active: true,
			MerchantInfo: &domain.MerchantInfo{StoreID: "s-1", StoreName: "Ana's"},
		},
	}
}

func TestCredentialStore_LoadEmpty(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewCredentialStore(client, "console", "kiosk-1", nil)

	creds, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestCredentialStore_SaveLoadClear(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewCredentialStore(client, "console", "kiosk-1", nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleCredentials()))
	assert.True(t, mr.Exists("console:kiosk-1:credentials"))

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", creds.AccessToken)
	assert.Equal(t, "refresh-1", creds.RefreshToken)
	assert.Equal(t, "s-1", creds.User.StoreID())

	require.NoError(t, store.Clear(ctx))
	creds, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestCredentialStore_SaveReplacesAllFields(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewCredentialStore(client, "console", "kiosk-1", nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleCredentials()))
	require.NoError(t, store.Save(ctx, domain.Credentials{AccessToken: "access-2"}))

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)
	assert.Nil(t, creds.User)
}

func TestCredentialStore_ScopedByInstallation(t *testing.T) {
	_, client := newTestRedis(t)
	a := NewCredentialStore(client, "console", "kiosk-1", nil)
	b := NewCredentialStore(client, "console", "kiosk-2", nil)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, sampleCredentials()))

	creds, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestCredentialStore_Sealed(t *testing.T) {
	mr, client := newTestRedis(t)
	sealer := newTestSealer(t)
	store := NewCredentialStore(client, "console", "kiosk-1", sealer)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleCredentials()))

	raw := mr.HGet("console:kiosk-1:credentials", fieldAccessToken)
	assert.NotEqual(t, "access-1", raw)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", creds.AccessToken)

	other := NewCredentialStore(client, "console", "kiosk-1", newTestSealer(t))
	_, err = other.Load(ctx)
	require.ErrorIs(t, err, errUnsealable)
}

func TestCredentialStore_UnavailableRedis(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewCredentialStore(client, "console", "kiosk-1", nil)
	mr.Close()

	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestNewSealer_RejectsBadKeys(t *testing.T) {
	_, err := NewSealer("not base64!")
	require.Error(t, err)

	_, err = NewSealer(base64.StdEncoding.EncodeToString([]byte("short")))
	require.Error(t, err)
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newTestSealer(t)

	a, err := s.Seal("secret")
	require.NoError(t, err)
	b, err := s.Seal("secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per seal")

	plain, err := s.Open(a)
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)

	_, err = s.Open("garbage")
	require.ErrorIs(t, err, errUnsealable)
}
