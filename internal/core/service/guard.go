package service

import (
	"net/url"
	"strings"

	"github.com/marketplace/admin-console/internal/core/domain"
)

// LandingPath is where authenticated users are sent from guest-only screens
// and after a login with no return path.
const LandingPath = "/dashboard"

// Verdict is the outcome of a guard decision.
type Verdict string

const (
	// Pending means the session is still resolving; show a loading state.
	Pending                Verdict = "pending"
	Allow                  Verdict = "allow"
	RedirectToLogin        Verdict = "redirect_login"
	RedirectToUnauthorized Verdict = "redirect_unauthorized"
	RedirectToLanding      Verdict = "redirect_landing"
)

// Requirement describes what a route or action needs. Zero fields are not
// checked.
type Requirement struct {
	Path       string
	Role       domain.Role
	Capability domain.Capability
}

// Decision is the guard's verdict plus the data needed to apply it.
type Decision struct {
	Verdict Verdict
	// ReturnPath is set for RedirectToLogin.
	ReturnPath string
	// Reason is set for RedirectToUnauthorized.
	Reason error
}

// Decide evaluates req against the session. It is pure: it performs no
// redirect itself and returns the same decision for the same inputs.
func Decide(session domain.Session, req Requirement) Decision {
	switch {
	case session.State.Transient():
		return Decision{Verdict: Pending}
	case session.State != domain.StateAuthenticated || session.User == nil:
		return Decision{Verdict: RedirectToLogin, ReturnPath: SafeReturnPath(req.Path)}
	}

	role := session.User.Role
	switch {
	case !domain.CanAccessCMS(role):
		return deny()
	case req.Role != "" && req.Role != role:
		return deny()
	case req.Capability != "" && !domain.HasCapability(role, req.Capability):
		return deny()
	}
	return Decision{Verdict: Allow}
}

// DecideGuestOnly guards screens that only make sense without a session,
// such as the login screen.
func DecideGuestOnly(session domain.Session) Decision {
	switch {
	case session.State.Transient():
		return Decision{Verdict: Pending}
	case session.State == domain.StateAuthenticated:
		return Decision{Verdict: RedirectToLanding, ReturnPath: LandingPath}
	}
	return Decision{Verdict: Allow}
}

func deny() Decision {
	return Decision{Verdict: RedirectToUnauthorized, Reason: domain.ErrInsufficientPermission}
}

// SafeReturnPath keeps only in-app absolute paths so a crafted return_to
// cannot send a user off-site after login. Anything else maps to LandingPath.
func SafeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return LandingPath
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" {
		return LandingPath
	}
	if u.Path == "/login" {
		return LandingPath
	}
	return u.RequestURI()
}
