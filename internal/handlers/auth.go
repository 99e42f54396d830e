package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/tbuchert/accounting-api/internal/middleware/auth"
	authsvc "github.com/tbuchert/accounting-api/internal/service/auth"
)

type AuthHandler struct {
	Auth     *authsvc.Service
	Producer EventProducer
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Token handles the form-encoded OAuth2-style password login.
func (h *AuthHandler) Token(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, pair, err := h.Auth.Login(c.Request().Context(), username, password)
	if err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "user.logged_in", user.ID.String(), map[string]any{
		"email": user.Email,
	})

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, authmw.CurrentUser(c))
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if err := h.Auth.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "password too short")
	}

	user := authmw.CurrentUser(c)
	if err := h.Auth.ChangePassword(c.Request().Context(), user, req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "user.password_changed", user.ID.String(), map[string]any{
		"email": user.Email,
	})
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword answers 202 no matter what, so account existence never
// leaks.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if err := h.Auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "password too short")
	}

	if err := h.Auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
