package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-scheduler/internal/api/dto"
	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/service"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

// UsersHandler exposes user lookups for managers and admins.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	user, err := h.users.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.UserEnvelope{User: dto.NewUserResponse(user)})
}
