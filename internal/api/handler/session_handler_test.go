package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/admin-console/internal/api/middleware"
	"github.com/marketplace/admin-console/internal/core/domain"
)

type stubSessions struct {
	session   domain.Session
	loginFn   func(ctx context.Context, email, password string) (bool, error)
	refreshFn func(ctx context.Context) error
	loggedOut bool
}

func (s *stubSessions) RestoreSession(context.Context) error { return nil }

func (s *stubSessions) Login(ctx context.Context, email, password string) (bool, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessions) Logout(context.Context) {
	s.loggedOut = true
	s.session = domain.Session{State: domain.StateUnauthenticated}
}

func (s *stubSessions) Refresh(ctx context.Context) error { return s.refreshFn(ctx) }

func (s *stubSessions) EnsureFresh(context.Context) error { return nil }

func (s *stubSessions) Snapshot() domain.Session { return s.session }

func (s *stubSessions) Subscribe(func(domain.Session)) func() { return func() {} }

type stubGate struct {
	check   domain.StoreCheck
	err     error
	refresh bool
}

func (g *stubGate) Check(_ context.Context, _ domain.Session, refresh bool) (domain.StoreCheck, error) {
	g.refresh = refresh
	return g.check, g.err
}

func (g *stubGate) Invalidate() {}

func merchantSession() domain.Session {
	return domain.Session{
		ID:    "sess-1",
		State: domain.StateAuthenticated,
		User: &domain.User{
			ID: "u-1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleMerchant, Active: true,
			MerchantInfo: &domain.MerchantInfo{StoreID: "s-1"},
		},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestSessionHandler_Login_RedirectsToReturnPath(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{
		loginFn: func(_ context.Context, email, password string) (bool, error) {
			if email != "ana@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return true, nil
		},
	}
	h := NewSessionHandler(stub, &stubGate{})

	form := url.Values{"email": {"ana@example.com"}, "password": {"secret"}, "return_to": {"/stores"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/stores" {
		t.Fatalf("expected /stores, got %q", loc)
	}
}

func TestSessionHandler_Login_RejectsOffSiteReturnPath(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{loginFn: func(context.Context, string, string) (bool, error) { return true, nil }}
	h := NewSessionHandler(stub, &stubGate{})

	body := strings.NewReader(`{"email":"ana@example.com","password":"secret","return_to":"//evil.example/x"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/dashboard" {
		t.Fatalf("expected landing, got %q", loc)
	}
}

func TestSessionHandler_Login_ValidationError(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{loginFn: func(context.Context, string, string) (bool, error) {
		t.Fatalf("login must not be called")
		return false, nil
	}}
	h := NewSessionHandler(stub, &stubGate{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp["error"], "email must be a valid email") || !strings.Contains(resp["error"], "password is required") {
		t.Fatalf("unexpected error message %q", resp["error"])
	}
}

func TestSessionHandler_Login_RejectsOversizedReturnPath(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{loginFn: func(context.Context, string, string) (bool, error) {
		t.Fatalf("login must not be called")
		return false, nil
	}}
	h := NewSessionHandler(stub, &stubGate{})

	form := url.Values{
		"email":     {"ana@example.com"},
		"password":  {"secret"},
		"return_to": {"/" + strings.Repeat("a", 2048)},
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "return_to must be at most 2048 characters" {
		t.Fatalf("unexpected error message %q", resp["error"])
	}
}

func TestSessionHandler_Login_PropagatesTaxonomyError(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{loginFn: func(context.Context, string, string) (bool, error) {
		return false, domain.ErrInvalidCredentials
	}}
	h := NewSessionHandler(stub, &stubGate{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@example.com","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionHandler_Session_HidesTokens(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubSessions{session: merchantSession()}, &stubGate{})

	rec := httptest.NewRecorder()
	if err := h.Session(e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.Contains(rec.Body.String(), `"access"`) || strings.Contains(rec.Body.String(), `"refresh"`) {
		t.Fatalf("token leaked: %s", rec.Body.String())
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.State != domain.StateAuthenticated || len(resp.Capabilities) != len(domain.CapabilitiesFor(domain.RoleMerchant)) {
		t.Fatalf("unexpected session response %#v", resp)
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{session: merchantSession()}
	h := NewSessionHandler(stub, &stubGate{})

	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !stub.loggedOut {
		t.Fatalf("logout not called")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != middleware.LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestSessionHandler_Unauthorized(t *testing.T) {
	e := newEcho()
	s := merchantSession()
	s.User.Role = domain.RoleCustomer
	s.User.MerchantInfo = nil
	h := NewSessionHandler(&stubSessions{session: s}, &stubGate{})

	rec := httptest.NewRecorder()
	if err := h.Unauthorized(e.NewContext(httptest.NewRequest(http.MethodGet, "/unauthorized", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp unauthorizedResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Role != domain.RoleCustomer || len(resp.Capabilities) != 0 {
		t.Fatalf("unexpected body %#v", resp)
	}
}

func TestSessionHandler_Unauthorized_GuestGoesToLogin(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubSessions{session: domain.Session{State: domain.StateUnauthenticated}}, &stubGate{})

	rec := httptest.NewRecorder()
	if err := h.Unauthorized(e.NewContext(httptest.NewRequest(http.MethodGet, "/unauthorized", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get(echo.HeaderLocation), "/login?return_to=") {
		t.Fatalf("expected login redirect, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestSessionHandler_RefreshStore_ForcesRefetch(t *testing.T) {
	e := newEcho()
	gate := &stubGate{check: domain.StoreCheck{State: domain.StoreGateValid}}
	h := NewSessionHandler(&stubSessions{session: merchantSession()}, gate)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/store/refresh", nil), rec)
	c.Set(middleware.SessionKey, merchantSession())

	if err := h.RefreshStore(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !gate.refresh {
		t.Fatalf("expected refresh=true")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestScreen_IncludesStoreVerdict(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products", nil), rec)
	c.Set(middleware.SessionKey, merchantSession())
	c.Set(middleware.StoreKey, domain.StoreCheck{State: domain.StoreGateValid})

	if err := Screen(domain.CapProducts)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp screenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Screen != domain.CapProducts || resp.Store == nil || resp.Store.State != domain.StoreGateValid {
		t.Fatalf("unexpected body %#v", resp)
	}
}
