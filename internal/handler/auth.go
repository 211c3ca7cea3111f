package handler

import (
	"net/http" // HTTP status codes and primitives

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/video-rental/internal/middleware" // identity stored by Authenticate
	"github.com/iliyamo/video-rental/internal/service"    // registration, login and token checks
)

// AuthHandler bundles the credential endpoints: register, login and me.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResp never carries the password or its hash.
type userResp struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin *bool  `json:"isAdmin,omitempty"`
}

// Register: create a user and hand its token back in the x-auth-token
// header.  The body echoes {id, name, email}.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	s, err := h.Auth.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(middleware.TokenHeader, s.Token.Token)
	return c.JSON(http.StatusOK, userResp{ID: s.User.ID, Name: s.User.Name, Email: s.User.Email})
}

// Login: verify credentials and return a token, both in the body and in the
// x-auth-token header.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	s, err := h.Auth.Login(c.Request().Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	c.Response().Header().Set(middleware.TokenHeader, s.Token.Token)
	return c.JSON(http.StatusOK, echo.Map{"token": s.Token.Token})
}

// Me: the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return service.Unauthorized()
	}
	u, err := h.Auth.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}
	isAdmin := u.IsAdmin
	return c.JSON(http.StatusOK, userResp{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: &isAdmin})
}
