package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-scheduler/internal/domain"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as described by its access token.
type Principal struct {
	domain.Identity
	TokenID string
}

// AuthMiddleware validates bearer tokens and attaches the caller's principal.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	claims, err := m.tokens.ParseAccessToken(raw)
	if err != nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	m.logger.Debug("access token verified",
		zap.String("sub", claims.Subject),
		zap.String("role", string(claims.Role)))

	c.Locals(principalKey, &Principal{Identity: claims.Identity(), TokenID: claims.ID})
	return c.Next()
}

// Optional attaches a principal when a valid bearer token is present and never rejects.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if raw, ok := BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
		if claims, err := m.tokens.ParseAccessToken(raw); err == nil {
			c.Locals(principalKey, &Principal{Identity: claims.Identity(), TokenID: claims.ID})
		}
	}
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
