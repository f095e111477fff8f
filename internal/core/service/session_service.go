package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

const (
	defaultRestoreTimeout = 10 * time.Second
	defaultRefreshSkew    = time.Minute
	serverLogoutTimeout   = 3 * time.Second
)

// SessionOptions tunes a SessionService. Zero values select defaults.
type SessionOptions struct {
	RestoreTimeout time.Duration
	RefreshSkew    time.Duration
	Auditor        ports.SessionAuditor
	Now            func() time.Time
	NewSessionID   func() string
}

type subscriber struct {
	id int
	fn func(domain.Session)
}

type refreshCall struct {
	done chan struct{}
	err  error
}

// SessionService owns the process-wide session. RestoreSession, Login,
// Logout and Refresh are the only operations that mutate it.
//
// Every operation records the session epoch before doing I/O and applies its
// result only if the epoch is unchanged; Login and Logout advance the epoch,
// so a later Logout always wins over an earlier in-flight operation.
type SessionService struct {
	auth  ports.AuthClient
	creds ports.CredentialStore
	audit ports.SessionAuditor
	log   zerolog.Logger

	restoreTimeout time.Duration
	refreshSkew    time.Duration
	now            func() time.Time
	newID          func() string

	mu         sync.Mutex
	session    domain.Session
	epoch      uint64
	refreshing *refreshCall
	subs       []subscriber
	nextSub    int
	pending    []domain.Session

	notifyMu sync.Mutex
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService returns a service in the initializing state.
func NewSessionService(auth ports.AuthClient, creds ports.CredentialStore, log zerolog.Logger, opts SessionOptions) *SessionService {
	s := &SessionService{
		auth:           auth,
		creds:          creds,
		audit:          opts.Auditor,
		log:            log,
		restoreTimeout: opts.RestoreTimeout,
		refreshSkew:    opts.RefreshSkew,
		now:            opts.Now,
		newID:          opts.NewSessionID,
		session:        domain.Session{State: domain.StateInitializing},
	}
	if s.restoreTimeout <= 0 {
		s.restoreTimeout = defaultRestoreTimeout
	}
	if s.refreshSkew <= 0 {
		s.refreshSkew = defaultRefreshSkew
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.Must(uuid.NewV4()).String() }
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.session)
}

// Subscribe registers fn to receive every transition in the order it was
// applied. fn must not call RestoreSession, Login, Logout or Refresh.
func (s *SessionService) Subscribe(fn func(domain.Session)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// RestoreSession validates persisted credentials once at process start. It
// always leaves the session in a stable state; the returned error only
// explains why the session could not be restored.
func (s *SessionService) RestoreSession(ctx context.Context) error {
	s.mu.Lock()
	if s.session.State != domain.StateInitializing {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch

	creds, err := s.creds.Load(ctx)
	if err != nil || creds.Empty() {
		if err != nil {
			s.log.Warn().Err(err).Msg("load persisted credentials failed")
			s.clearCredentialsLocked(ctx)
		}
		s.setLocked(domain.Session{State: domain.StateUnauthenticated})
		s.mu.Unlock()
		s.flush()
		if err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		return nil
	}
	s.setLocked(domain.Session{State: domain.StateAuthenticating})
	s.mu.Unlock()
	s.flush()

	rctx, cancel := context.WithTimeout(ctx, s.restoreTimeout)
	defer cancel()
	result, err := s.validate(rctx, creds)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Info().Msg("restore result discarded: session superseded")
		return domain.ErrSuperseded
	}
	if err == nil {
		err = s.saveCredentialsLocked(ctx, result)
	}
	if err != nil {
		s.clearCredentialsLocked(ctx)
		s.setLocked(domain.Session{State: domain.StateUnauthenticated})
		s.mu.Unlock()
		s.flush()
		s.record(domain.SessionEvent{Type: domain.EventRestoreFailed, Reason: err.Error()})
		s.log.Info().Err(err).Msg("persisted session not restored")
		return fmt.Errorf("restore session: %w", err)
	}
	snap := s.authenticateLocked(s.newID(), result)
	s.mu.Unlock()
	s.flush()

	s.record(eventFor(domain.EventRestore, snap))
	s.log.Info().Str("session_id", snap.ID).Str("role", string(snap.Role())).Msg("session restored")
	return nil
}

// validate checks restored credentials against the auth service. An expired
// access token gets one refresh attempt when a refresh token is available.
func (s *SessionService) validate(ctx context.Context, creds *domain.Credentials) (*ports.AuthResult, error) {
	user, err := s.auth.Me(ctx, creds.AccessToken)
	if err == nil {
		return validResult(&ports.AuthResult{
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
			User:         user,
		})
	}
	if !errors.Is(err, domain.ErrSessionExpired) || creds.RefreshToken == "" {
		return nil, err
	}

	res, err := s.auth.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return nil, err
	}
	if res.RefreshToken == "" {
		res.RefreshToken = creds.RefreshToken
	}
	if res.User == nil {
		if res.User, err = s.auth.Me(ctx, res.AccessToken); err != nil {
			return nil, err
		}
	}
	return validResult(res)
}

// Login authenticates with email and password. It reports false with an
// error from the domain taxonomy on failure; the user-visible message is
// also stored on the session.
func (s *SessionService) Login(ctx context.Context, email, password string) (bool, error) {
	s.mu.Lock()
	switch s.session.State {
	case domain.StateAuthenticating:
		s.mu.Unlock()
		return false, domain.ErrLoginInProgress
	case domain.StateAuthenticated:
		s.mu.Unlock()
		return false, domain.ErrAlreadyAuthenticated
	}
	s.epoch++
	epoch := s.epoch
	s.setLocked(domain.Session{State: domain.StateAuthenticating})
	s.mu.Unlock()
	s.flush()

	res, err := s.auth.Login(ctx, email, password)
	if err == nil {
		res, err = validResult(res)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Info().Msg("login result discarded: session superseded")
		return false, domain.ErrSuperseded
	}
	if err == nil {
		err = s.saveCredentialsLocked(ctx, res)
	}
	if err != nil {
		s.clearCredentialsLocked(ctx)
		s.setLocked(domain.Session{
			State: domain.StateUnauthenticated,
			Error: domain.UserMessage(err),
		})
		s.mu.Unlock()
		s.flush()
		s.record(domain.SessionEvent{Type: domain.EventLoginFailed, Reason: err.Error()})
		s.log.Info().Err(err).Msg("login failed")
		return false, err
	}
	snap := s.authenticateLocked(s.newID(), res)
	s.mu.Unlock()
	s.flush()

	s.record(eventFor(domain.EventLogin, snap))
	s.log.Info().Str("session_id", snap.ID).Str("user_id", snap.User.ID).Str("role", string(snap.Role())).Msg("logged in")
	return true, nil
}

// Logout ends the session from any state. Local state is always cleared; the
// server-side invalidation is best effort.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	prev := s.session
	s.clearCredentialsLocked(ctx)
	s.setLocked(domain.Session{State: domain.StateUnauthenticated})
	s.mu.Unlock()
	s.flush()

	s.invalidateServerSession(ctx, prev)
	if prev.State == domain.StateAuthenticated {
		s.record(eventFor(domain.EventLogout, prev))
		s.log.Info().Str("session_id", prev.ID).Msg("logged out")
	}
}

// Refresh renews the access token. Concurrent callers share one request.
// A rejected refresh token ends the session and returns
// domain.ErrSessionExpired; a transport failure keeps it and returns
// domain.ErrNetwork.
func (s *SessionService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if call := s.refreshing; call != nil {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrNetwork, ctx.Err())
		}
	}
	if s.session.State != domain.StateAuthenticated || s.session.RefreshToken == "" {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	call := &refreshCall{done: make(chan struct{})}
	s.refreshing = call
	epoch := s.epoch
	current := cloneSession(s.session)
	s.mu.Unlock()

	// Waiters share this request, so one caller's cancellation must not fail it.
	res, err := s.auth.Refresh(context.WithoutCancel(ctx), current.RefreshToken)

	s.mu.Lock()
	call.err = s.applyRefreshLocked(ctx, epoch, current, res, err)
	s.refreshing = nil
	s.mu.Unlock()
	s.flush()
	close(call.done)

	switch {
	case call.err == nil:
		s.record(eventFor(domain.EventRefresh, current))
		s.log.Debug().Str("session_id", current.ID).Msg("session refreshed")
	case errors.Is(call.err, domain.ErrSessionExpired):
		s.record(domain.SessionEvent{
			SessionID: current.ID,
			Type:      domain.EventRefreshFailed,
			UserID:    current.User.ID,
			Role:      current.Role(),
			Reason:    call.err.Error(),
		})
		s.log.Info().Err(call.err).Str("session_id", current.ID).Msg("session expired")
		s.invalidateServerSession(ctx, current)
	default:
		s.log.Warn().Err(call.err).Str("session_id", current.ID).Msg("refresh failed")
	}
	return call.err
}

// invalidateServerSession asks the auth API to revoke prev's tokens. Failures
// are logged only; local state is already cleared.
func (s *SessionService) invalidateServerSession(ctx context.Context, prev domain.Session) {
	if prev.AccessToken == "" {
		return
	}
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverLogoutTimeout)
	defer cancel()
	if err := s.auth.Logout(lctx, prev.AccessToken); err != nil {
		s.log.Warn().Err(err).Str("session_id", prev.ID).Msg("server-side logout failed")
	}
}

func (s *SessionService) applyRefreshLocked(ctx context.Context, epoch uint64, current domain.Session, res *ports.AuthResult, err error) error {
	if s.epoch != epoch {
		return domain.ErrSuperseded
	}
	if err != nil && errors.Is(err, domain.ErrNetwork) {
		return err
	}
	if err == nil {
		if res.RefreshToken == "" {
			res.RefreshToken = current.RefreshToken
		}
		if res.User == nil {
			res.User = current.User.Clone()
		}
		res, err = validResult(res)
	}
	if err == nil && res.User.Role != current.Role() {
		err = fmt.Errorf("role changed from %s to %s", current.Role(), res.User.Role)
	}
	if err != nil {
		s.epoch++
		s.clearCredentialsLocked(ctx)
		s.setLocked(domain.Session{
			State: domain.StateUnauthenticated,
			Error: domain.MsgSessionExpired,
		})
		return fmt.Errorf("%w: %v", domain.ErrSessionExpired, err)
	}
	if err := s.saveCredentialsLocked(ctx, res); err != nil {
		return err
	}
	s.authenticateLocked(current.ID, res)
	return nil
}

// EnsureFresh refreshes ahead of time when the access token carries an expiry
// that falls within the refresh skew. Opaque tokens are left to the reactive
// path (a 401 from the API followed by Refresh).
func (s *SessionService) EnsureFresh(ctx context.Context) error {
	snap := s.Snapshot()
	if snap.State != domain.StateAuthenticated {
		return nil
	}
	exp, ok := tokenExpiry(snap.AccessToken)
	if !ok || s.now().Add(s.refreshSkew).Before(exp) {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *SessionService) authenticateLocked(id string, res *ports.AuthResult) domain.Session {
	s.setLocked(domain.Session{
		ID:           id,
		State:        domain.StateAuthenticated,
		User:         res.User.Clone(),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
	return cloneSession(s.session)
}

// setLocked installs next as the current session and queues it for
// subscribers. Callers hold s.mu and call flush after releasing it.
func (s *SessionService) setLocked(next domain.Session) {
	from := s.session.State
	next.Version = s.session.Version + 1
	s.session = next
	s.pending = append(s.pending, cloneSession(next))
	s.log.Debug().
		Str("from", string(from)).
		Str("to", string(next.State)).
		Uint64("version", next.Version).
		Msg("session transition")
}

// flush delivers queued transitions in order. Only one goroutine delivers at
// a time; a caller that finds delivery in progress leaves its snapshots to
// the active deliverer.
func (s *SessionService) flush() {
	for {
		if !s.notifyMu.TryLock() {
			return
		}
		for {
			s.mu.Lock()
			batch := s.pending
			s.pending = nil
			subs := append([]subscriber(nil), s.subs...)
			s.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, snap := range batch {
				for _, sub := range subs {
					sub.fn(cloneSession(snap))
				}
			}
		}
		s.notifyMu.Unlock()

		s.mu.Lock()
		more := len(s.pending) > 0
		s.mu.Unlock()
		if !more {
			return
		}
	}
}

func (s *SessionService) saveCredentialsLocked(ctx context.Context, res *ports.AuthResult) error {
	err := s.creds.Save(context.WithoutCancel(ctx), domain.Credentials{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
	if err != nil {
		return fmt.Errorf("%w: persist credentials: %v", domain.ErrNetwork, err)
	}
	return nil
}

func (s *SessionService) clearCredentialsLocked(ctx context.Context) {
	if err := s.creds.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn().Err(err).Msg("clear persisted credentials failed")
	}
}

func (s *SessionService) record(e domain.SessionEvent) {
	if s.audit == nil {
		return
	}
	e.Timestamp = s.now().UTC()
	s.audit.Record(e)
}

func eventFor(t domain.SessionEventType, snap domain.Session) domain.SessionEvent {
	e := domain.SessionEvent{SessionID: snap.ID, Type: t, Role: snap.Role()}
	if snap.User != nil {
		e.UserID = snap.User.ID
	}
	return e
}

// validResult rejects responses that cannot back an authenticated session.
func validResult(res *ports.AuthResult) (*ports.AuthResult, error) {
	if res == nil || res.AccessToken == "" {
		return nil, fmt.Errorf("%w: auth response without token", domain.ErrNetwork)
	}
	if err := res.User.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	return res, nil
}

func cloneSession(s domain.Session) domain.Session {
	s.User = s.User.Clone()
	return s
}
