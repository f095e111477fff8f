package middleware

import (
	"context"
	"sync"

	"github.com/marketplace/admin-console/internal/core/domain"
)

type stubSessions struct {
	mu        sync.Mutex
	session   domain.Session
	refreshed int
	// afterRefresh replaces the session when Refresh succeeds.
	afterRefresh *domain.Session
	refreshErr   error
}

func (s *stubSessions) RestoreSession(context.Context) error { return nil }

func (s *stubSessions) Login(context.Context, string, string) (bool, error) { return false, nil }

func (s *stubSessions) Logout(context.Context) {}

func (s *stubSessions) Refresh(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed++
	if s.refreshErr != nil {
		return s.refreshErr
	}
	if s.afterRefresh != nil {
		s.session = *s.afterRefresh
	}
	return nil
}

func (s *stubSessions) EnsureFresh(context.Context) error { return nil }

func (s *stubSessions) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *stubSessions) Subscribe(func(domain.Session)) func() { return func() {} }

type stubGate struct {
	calls   []domain.Session
	results []gateResult
}

type gateResult struct {
	check domain.StoreCheck
	err   error
}

func (g *stubGate) Check(_ context.Context, s domain.Session, _ bool) (domain.StoreCheck, error) {
	g.calls = append(g.calls, s)
	r := g.results[0]
	if len(g.results) > 1 {
		g.results = g.results[1:]
	}
	return r.check, r.err
}

func (g *stubGate) Invalidate() {}

func authenticated(role domain.Role, token string) domain.Session {
	u := &domain.User{ID: "u-1", Name: "Ana", Email: "ana@example.com", Role: role, Active: true}
	if role == domain.RoleMerchant {
		u.MerchantInfo = &domain.MerchantInfo{StoreID: "s-1", StoreName: "Ana's"}
	}
	return domain.Session{
		ID:          "sess-1",
		State:       domain.StateAuthenticated,
		User:        u,
		AccessToken: token,
	}
}
