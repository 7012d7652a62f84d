package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	middleware "github.com/Skotchmaster/peptide_shop/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return serviceError(l, "login_error", err)
	}

	c.SetCookie(middleware.CreateCookie(middleware.AccessCookie, res.AccessToken, "/", res.AccessExp))
	return c.JSON(http.StatusOK, map[string]any{
		"role":       res.Role,
		"expires_at": res.AccessExp,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(middleware.DeleteCookie(middleware.AccessCookie, "/"))
	return c.NoContent(http.StatusNoContent)
}
