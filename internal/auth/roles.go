package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-scheduler/internal/domain"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

// RequireRole lets the request through only when the verified principal holds one of the
// allowed roles. It must be mounted after AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Unauthorized")
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
