package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"checkspot/internal/config"
	"checkspot/internal/middleware"
	"checkspot/internal/repository"
	"checkspot/internal/utils"
	"checkspot/internal/validation"
)

// AuthHandler bundles dependencies for the signup/login/session endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResp struct {
	User  userPart `json:"user"`
	Token string   `json:"token"`
}

// Signup creates a user and issues a bearer token immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validation.NewErrorResponse(err))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("email", "The email has already been taken."))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create user failed"})
	}

	tok, err := h.issueToken(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:  userPart{ID: uid, Name: req.Name, Email: req.Email},
		Token: tok,
	})
}

// Login verifies credentials and issues a fresh token. The failure response
// is identical for an unknown email and a wrong password so the endpoint
// cannot be used to probe which addresses are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validation.NewErrorResponse(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return credentialsIncorrect(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return credentialsIncorrect(c)
	}

	tok, err := h.issueToken(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:  userPart{ID: u.ID, Name: u.Name, Email: u.Email},
		Token: tok,
	})
}

// Me returns the public fields of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email})
}

// Logout revokes the presented token, ending this session only. Other
// sessions of the same user keep their tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeByHash(ctx, middleware.TokenHash(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// issueToken signs a fresh session token for the user and stores its hash.
func (h *AuthHandler) issueToken(ctx context.Context, userID uint64) (string, error) {
	tok, err := utils.NewBearerToken(h.Cfg.TokenSecret, userID, h.Cfg.TokenTTLDays)
	if err != nil {
		return "", err
	}
	if err := h.Tokens.Store(ctx, userID, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
		return "", err
	}
	return tok.Raw, nil
}

func credentialsIncorrect(c echo.Context) error {
	return c.JSON(http.StatusUnprocessableEntity,
		validation.FieldError("email", "The provided credentials are incorrect."))
}
