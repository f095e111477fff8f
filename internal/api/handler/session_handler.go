package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/admin-console/internal/api/middleware"
	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
	"github.com/marketplace/admin-console/internal/core/service"
)

type SessionHandler struct {
	sessions ports.SessionService
	gate     ports.StoreGate
}

func NewSessionHandler(sessions ports.SessionService, gate ports.StoreGate) *SessionHandler {
	return &SessionHandler{sessions: sessions, gate: gate}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=256"`
	ReturnTo string `json:"return_to" form:"return_to" query:"return_to" validate:"max=2048"`
}

type loginPageResponse struct {
	Screen   string `json:"screen"`
	ReturnTo string `json:"return_to"`
	Error    string `json:"error,omitempty"`
}

type sessionResponse struct {
	ID           string              `json:"id,omitempty"`
	State        domain.SessionState `json:"state"`
	User         *domain.User        `json:"user,omitempty"`
	Capabilities []domain.Capability `json:"capabilities"`
	Error        string              `json:"error,omitempty"`
}

type unauthorizedResponse struct {
	Screen       string              `json:"screen"`
	Message      string              `json:"message"`
	Role         domain.Role         `json:"role"`
	Capabilities []domain.Capability `json:"capabilities"`
}

func newSessionResponse(s domain.Session) sessionResponse {
	resp := sessionResponse{
		ID:           s.ID,
		State:        s.State,
		User:         s.User,
		Capabilities: []domain.Capability{},
		Error:        s.Error,
	}
	if s.User != nil {
		resp.Capabilities = domain.CapabilitiesFor(s.User.Role)
	}
	return resp
}

// LoginPage describes the login screen, including the last sign-in error.
//
// @Summary      Login screen
// @Tags         session
// @Produce      json
// @Param        return_to  query     string  false  "Path to resume after sign-in"
// @Success      200        {object}  loginPageResponse
// @Success      202        {object}  map[string]string
// @Failure      302        {string}  string  "already signed in"
// @Router       /login [get]
func (h *SessionHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, loginPageResponse{
		Screen:   "login",
		ReturnTo: service.SafeReturnPath(c.QueryParam("return_to")),
		Error:    h.sessions.Snapshot().Error,
	})
}

// Login signs in and resumes navigation at return_to.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      303   {string}  string  "redirect to return_to"
// @Failure      302   {string}  string  "already signed in; redirect to /dashboard"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if _, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, service.SafeReturnPath(req.ReturnTo))
}

// Logout ends the session from any state.
//
// @Summary      Sign out
// @Tags         session
// @Success      303  {string}  string  "redirect to /login"
// @Router       /logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Session returns the current session without its tokens.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(h.sessions.Snapshot()))
}

// Refresh renews the access token now.
//
// @Summary      Refresh the session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	if err := h.sessions.Refresh(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(h.sessions.Snapshot()))
}

// Unauthorized is the page shown when the role lacks a capability. It is not
// guarded by Decide, which would redirect here again for CMS-less roles.
//
// @Summary      Unauthorized screen
// @Tags         session
// @Produce      json
// @Success      200  {object}  unauthorizedResponse
// @Failure      302  {string}  string  "not signed in"
// @Router       /unauthorized [get]
func (h *SessionHandler) Unauthorized(c echo.Context) error {
	s := h.sessions.Snapshot()
	if s.State != domain.StateAuthenticated || s.User == nil {
		d := service.Decide(s, service.Requirement{})
		return middleware.ApplyDecision(c, d, s)
	}
	return c.JSON(http.StatusForbidden, unauthorizedResponse{
		Screen:       "unauthorized",
		Message:      "Your role does not have access to that screen.",
		Role:         s.User.Role,
		Capabilities: domain.CapabilitiesFor(s.User.Role),
	})
}

// RefreshStore re-runs the store validity check for the signed-in merchant.
//
// @Summary      Re-check the merchant store
// @Tags         store
// @Produce      json
// @Success      200  {object}  domain.StoreCheck
// @Failure      423  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /store/refresh [post]
func (h *SessionHandler) RefreshStore(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	check, err := h.gate.Check(c.Request().Context(), s, true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, check)
}
