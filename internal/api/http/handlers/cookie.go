package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/api/auth/refresh-token"
)

// RefreshCookie describes the cookie carrying the refresh token. Its path is the renewal
// endpoint and nothing else.
type RefreshCookie struct {
	Name     string
	Path     string
	Secure   bool
	SameSite string
	MaxAge   time.Duration
}

// NewRefreshCookie returns the cookie settings for the environment: Secure and SameSite=Strict
// in production, SameSite=Lax otherwise.
func NewRefreshCookie(production bool, maxAge time.Duration) RefreshCookie {
	rc := RefreshCookie{
		Name:     RefreshCookieName,
		Path:     RefreshCookiePath,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if production {
		rc.Secure = true
		rc.SameSite = fiber.CookieSameSiteStrictMode
	}
	return rc
}

func (rc RefreshCookie) set(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     rc.Name,
		Value:    value,
		Path:     rc.Path,
		MaxAge:   int(rc.MaxAge / time.Second),
		Secure:   rc.Secure,
		HTTPOnly: true,
		SameSite: rc.SameSite,
	})
}

// clear expires the cookie using the same name, path and flags it was set with.
func (rc RefreshCookie) clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     rc.Name,
		Value:    "",
		Path:     rc.Path,
		Expires:  time.Unix(0, 0),
		Secure:   rc.Secure,
		HTTPOnly: true,
		SameSite: rc.SameSite,
	})
}
