package domain

import "time"

// SessionState is the lifecycle state of the process-wide session.
type SessionState string

const (
	StateInitializing    SessionState = "initializing"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
	StateUnauthenticated SessionState = "unauthenticated"
)

// Transient reports whether no authorization decision may be taken in s.
func (s SessionState) Transient() bool {
	return s == StateInitializing || s == StateAuthenticating
}

// Session is a read-only snapshot of the session store.
type Session struct {
	// ID changes on every successful authentication; empty when unauthenticated.
	ID           string       `json:"id,omitempty"`
	State        SessionState `json:"state"`
	User         *User        `json:"user,omitempty"`
	AccessToken  string       `json:"-"`
	RefreshToken string       `json:"-"`
	// Error is the user-visible message of the last failed operation.
	Error string `json:"error,omitempty"`
	// Version increases on every transition.
	Version uint64 `json:"version"`
}

// Role returns the user's role, or "" when no user is loaded.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Credentials is what the persistent credential client stores between runs.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// Empty reports whether no usable credentials are present.
func (c *Credentials) Empty() bool {
	return c == nil || c.AccessToken == ""
}

// SessionEventType names an auditable lifecycle transition.
type SessionEventType string

const (
	EventLogin         SessionEventType = "login"
	EventLoginFailed   SessionEventType = "login_failed"
	EventRestore       SessionEventType = "restore"
	EventRestoreFailed SessionEventType = "restore_failed"
	EventRefresh       SessionEventType = "refresh"
	EventRefreshFailed SessionEventType = "refresh_failed"
	EventLogout        SessionEventType = "logout"
)

// SessionEvent is one entry of the session audit trail.
type SessionEvent struct {
	SessionID string
	Type      SessionEventType
	UserID    string
	Role      Role
	Reason    string
	Timestamp time.Time
}
