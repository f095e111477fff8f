package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuth struct {
	mu sync.Mutex

	loginFn   func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	refreshFn func(ctx context.Context, refreshToken string) (*ports.AuthResult, error)
	meFn      func(ctx context.Context, accessToken string) (*domain.User, error)

	refreshCalls int
	logoutCalls  []string
}

func (a *stubAuth) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return a.loginFn(ctx, email, password)
}

func (a *stubAuth) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	a.mu.Lock()
	a.refreshCalls++
	a.mu.Unlock()
	return a.refreshFn(ctx, refreshToken)
}

func (a *stubAuth) Me(ctx context.Context, accessToken string) (*domain.User, error) {
	return a.meFn(ctx, accessToken)
}

func (a *stubAuth) Logout(_ context.Context, accessToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logoutCalls = append(a.logoutCalls, accessToken)
	return nil
}

func (a *stubAuth) refreshes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshCalls
}

type memCreds struct {
	mu      sync.Mutex
	creds   *domain.Credentials
	loadErr error
	saveErr error
	saves   int
	clears  int
}

func (m *memCreds) Load(context.Context) (*domain.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.creds == nil {
		return nil, nil
	}
	c := *m.creds
	return &c, nil
}

func (m *memCreds) Save(_ context.Context, c domain.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.creds = &c
	return nil
}

func (m *memCreds) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.creds = nil
	return nil
}

func (m *memCreds) stored() *domain.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

type recAuditor struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *recAuditor) Record(e domain.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recAuditor) types() []domain.SessionEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type stubStoreClient struct {
	mu    sync.Mutex
	calls int
	// release, when set, blocks GetStore until closed.
	release chan struct{}
	store   *domain.StoreResource
	err     error
}

func (c *stubStoreClient) GetStore(ctx context.Context, _, _ string) (*domain.StoreResource, error) {
	c.mu.Lock()
	c.calls++
	release := c.release
	c.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store, c.err
}

func (c *stubStoreClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func adminUser() *domain.User {
	return &domain.User{ID: "u-admin", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin, Active: true}
}

func merchantUser(storeID string) *domain.User {
	return &domain.User{
		ID: "u-merchant", Name: "Ana", Email: "ana@example.com", Role: domain.RoleMerchant, Active: true,
		MerchantInfo: &domain.MerchantInfo{StoreID: storeID, StoreName: "Ana's"},
	}
}

func signedToken(exp time.Time) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u", "exp": exp.Unix()}).
		SignedString([]byte("test-key"))
	if err != nil {
		panic(err)
	}
	return tok
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("sess-%d", n)
	}
}
