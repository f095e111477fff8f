package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketplace/admin-console/internal/core/domain"
)

type screenResponse struct {
	Screen       domain.Capability   `json:"screen"`
	User         *domain.User        `json:"user"`
	Capabilities []domain.Capability `json:"capabilities"`
	Store        *domain.StoreCheck  `json:"store,omitempty"`
}

// Screen renders the landing data of a console screen. The guard has
// already established that the role holds the screen's capability.
//
// @Summary      Console screen
// @Tags         screens
// @Produce      json
// @Param        screen  path      string  true  "Capability"
// @Success      200     {object}  screenResponse
// @Success      202     {object}  map[string]string
// @Failure      302     {string}  string  "redirect to login or unauthorized"
// @Failure      423     {object}  map[string]string
// @Router       /{screen} [get]
func Screen(capability domain.Capability) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := ctxSession(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, screenResponse{
			Screen:       capability,
			User:         s.User,
			Capabilities: domain.CapabilitiesFor(s.User.Role),
			Store:        ctxStore(c),
		})
	}
}
