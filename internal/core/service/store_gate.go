package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

type storeFetch struct {
	done  chan struct{}
	check domain.StoreCheck
	err   error
}

// StoreGate resolves whether a merchant's store is usable. The verdict is
// cached per session id and resolved at most once per session unless a
// refresh is requested.
type StoreGate struct {
	client ports.StoreClient
	log    zerolog.Logger

	mu        sync.Mutex
	sessionID string
	check     domain.StoreCheck
	inflight  *storeFetch
	gen       uint64
}

var _ ports.StoreGate = (*StoreGate)(nil)

func NewStoreGate(client ports.StoreClient, log zerolog.Logger) *StoreGate {
	return &StoreGate{
		client: client,
		log:    log,
		check:  domain.StoreCheck{State: domain.StoreGateUnknown},
	}
}

// Watch drops the cache whenever the session leaves the authenticated state
// or a different session takes over.
func (g *StoreGate) Watch(sessions ports.SessionService) (unsubscribe func()) {
	return sessions.Subscribe(func(s domain.Session) {
		g.mu.Lock()
		stale := s.State != domain.StateAuthenticated || s.ID != g.sessionID
		g.mu.Unlock()
		if stale {
			g.Invalidate()
		}
	})
}

// Invalidate forgets the cached verdict; the next Check fetches again.
func (g *StoreGate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.sessionID = ""
	g.check = domain.StoreCheck{State: domain.StoreGateUnknown}
	g.inflight = nil
}

// Current returns the cached verdict without fetching.
func (g *StoreGate) Current() domain.StoreCheck {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.check
}

// Check returns the verdict for the session's merchant store. Non-merchants
// are not subject to the gate. A blocked store yields a
// *domain.StoreUnavailableError alongside the check; fetch failures return
// domain.ErrNetwork or domain.ErrSessionExpired and leave the state unknown.
func (g *StoreGate) Check(ctx context.Context, session domain.Session, refresh bool) (domain.StoreCheck, error) {
	if session.State != domain.StateAuthenticated || session.User == nil {
		return domain.StoreCheck{State: domain.StoreGateUnknown}, domain.ErrNotAuthenticated
	}
	if session.User.Role != domain.RoleMerchant {
		return domain.StoreCheck{State: domain.StoreGateNotApplicable}, nil
	}

	g.mu.Lock()
	if g.sessionID != session.ID || refresh {
		g.gen++
		g.sessionID = session.ID
		g.check = domain.StoreCheck{State: domain.StoreGateUnknown}
		g.inflight = nil
	}
	if g.check.State != domain.StoreGateUnknown && g.check.State != domain.StoreGateLoading {
		check := g.check
		g.mu.Unlock()
		return check, verdictErr(check)
	}
	fetch := g.inflight
	if fetch == nil {
		fetch = &storeFetch{done: make(chan struct{})}
		g.inflight = fetch
		g.check = domain.StoreCheck{State: domain.StoreGateLoading}
		go g.resolve(context.WithoutCancel(ctx), g.gen, session, fetch)
	}
	g.mu.Unlock()

	select {
	case <-fetch.done:
		return fetch.check, fetch.err
	case <-ctx.Done():
		return domain.StoreCheck{State: domain.StoreGateLoading}, fmt.Errorf("%w: %w", domain.ErrNetwork, ctx.Err())
	}
}

func (g *StoreGate) resolve(ctx context.Context, gen uint64, session domain.Session, fetch *storeFetch) {
	check, err := g.fetch(ctx, session)

	g.mu.Lock()
	if g.gen == gen {
		if err != nil {
			g.check = domain.StoreCheck{State: domain.StoreGateUnknown}
		} else {
			g.check = check
		}
		g.inflight = nil
	}
	g.mu.Unlock()

	fetch.check, fetch.err = check, err
	if err == nil {
		fetch.err = verdictErr(check)
	}
	close(fetch.done)

	if err != nil {
		g.log.Warn().Err(err).Str("session_id", session.ID).Msg("store check failed")
		return
	}
	g.log.Info().
		Str("session_id", session.ID).
		Str("store_id", session.User.StoreID()).
		Str("state", string(check.State)).
		Msg("store resolved")
}

func (g *StoreGate) fetch(ctx context.Context, session domain.Session) (domain.StoreCheck, error) {
	storeID := session.User.StoreID()
	if storeID == "" {
		return blocked(domain.StoreGateMissing, nil), nil
	}

	store, err := g.client.GetStore(ctx, session.AccessToken, storeID)
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return blocked(domain.StoreGateMissing, nil), nil
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrNetwork):
		return domain.StoreCheck{State: domain.StoreGateUnknown}, err
	case err != nil:
		return domain.StoreCheck{State: domain.StoreGateUnknown}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	if store.Status != domain.StoreActive {
		return blocked(domain.StoreGateInvalidStatus, store), nil
	}
	return domain.StoreCheck{State: domain.StoreGateValid, Store: store}, nil
}

func blocked(state domain.StoreGateState, store *domain.StoreResource) domain.StoreCheck {
	e := &domain.StoreUnavailableError{State: state}
	if store != nil {
		e.Status = store.Status
	}
	return domain.StoreCheck{State: state, Store: store, Message: e.Message()}
}

func verdictErr(check domain.StoreCheck) error {
	switch check.State {
	case domain.StoreGateMissing, domain.StoreGateInvalidStatus:
		e := &domain.StoreUnavailableError{State: check.State}
		if check.Store != nil {
			e.Status = check.Store.Status
		}
		return e
	}
	return nil
}
