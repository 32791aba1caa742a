package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/coop-scheduler/internal/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that fails verification, whether it is expired,
// tampered or malformed.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Now           func() time.Time
}

// TokenManager handles issuing and validating access and refresh JWTs.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenManager builds a new manager. Missing or shared secrets are a configuration error.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must be set")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           cfg.Now,
	}, nil
}

// Claims describes JWT payload.
type Claims struct {
	Role           domain.Role      `json:"role"`
	StoreID        *string          `json:"storeId"`
	Qualifications []string         `json:"qualifications"`
	Kind           domain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Identity returns the claim snapshot.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		UserID:         c.Subject,
		Role:           c.Role,
		StoreID:        c.StoreID,
		Qualifications: c.Qualifications,
	}
}

// RefreshTTL returns the refresh token lifetime, which is also the refresh cookie Max-Age.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// IssueAccessToken signs a short-lived access token for the identity.
func (tm *TokenManager) IssueAccessToken(id domain.Identity) (*domain.Token, error) {
	return tm.issue(id, domain.TokenKindAccess, tm.accessSecret, tm.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token carrying the same claims.
func (tm *TokenManager) IssueRefreshToken(id domain.Identity) (*domain.Token, error) {
	return tm.issue(id, domain.TokenKindRefresh, tm.refreshSecret, tm.refreshTTL)
}

// ParseAccessToken verifies an access token and returns its claims.
func (tm *TokenManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, domain.TokenKindAccess, tm.accessSecret)
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func (tm *TokenManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, domain.TokenKindRefresh, tm.refreshSecret)
}

func (tm *TokenManager) issue(id domain.Identity, kind domain.TokenKind, secret []byte, ttl time.Duration) (*domain.Token, error) {
	now := tm.now()
	expiresAt := now.Add(ttl)
	tokenID := uuid.NewString()

	claims := &Claims{
		Role:           id.Role,
		StoreID:        id.StoreID,
		Qualifications: id.Qualifications,
		Kind:           kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    tm.issuer,
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return &domain.Token{
		ID:        tokenID,
		Kind:      kind,
		Value:     tokenString,
		Identity:  id,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (tm *TokenManager) parse(tokenStr string, kind domain.TokenKind, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
