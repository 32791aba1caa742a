package auth

import (
	"context"
	"time"
)

// RevocationStore is the opt-in server-side denylist for refresh tokens. Without one,
// logout only clears the client cookie and an issued refresh token stays valid until expiry.
type RevocationStore interface {
	RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	RevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}
