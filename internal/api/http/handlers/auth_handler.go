package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-scheduler/internal/api/dto"
	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/service"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

// AuthHandler exposes the login, renewal, profile and logout endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie RefreshCookie
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie RefreshCookie) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookie.set(c, result.RefreshToken.Value)
	return c.JSON(dto.LoginResponse{
		AccessToken: result.AccessToken.Value,
		User:        dto.NewUserResponse(result.User),
	})
}

// RefreshToken handles POST /api/auth/refresh-token. The refresh token is only ever read from
// the cookie.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	access, err := h.auth.Refresh(c.UserContext(), c.Cookies(h.cookie.Name))
	if err != nil {
		return err
	}
	return c.JSON(dto.RefreshResponse{AccessToken: access.Value})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	user, err := h.auth.Me(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserEnvelope{User: dto.NewUserResponse(user)})
}

// UpdateMe handles PUT /api/auth/me. Only profile fields are accepted.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	update, invalid := req.Sanitize()
	if invalid != nil {
		return apperrors.NewValidationError("invalid profile fields", invalid)
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), principal.UserID, update)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserEnvelope{User: dto.NewUserResponse(user)})
}

// Logout handles POST /api/auth/logout. It always clears the refresh cookie, so repeated calls
// behave the same.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookie.clear(c)
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out"})
}
